package therapy

import "github.com/zhouzirui/viridian/backend/internal/analysis/emotion"

// Phrase banks. Every bank must stay non-empty; TestPhraseBanksNonEmpty enforces it.

var emotionLines = map[emotion.Label][]string{
	emotion.Sadness: {
		"That sounds heavy to carry.",
		"There’s a lot weighing on you emotionally.",
		"It feels like this has been draining you.",
		"That kind of feeling can stay quietly for a long time.",
	},
	emotion.Anger: {
		"That sounds frustrating.",
		"There’s a lot of tension in this.",
		"Something here feels deeply upsetting.",
	},
	emotion.Fear: {
		"That sounds overwhelming.",
		"That uncertainty can feel intense.",
		"It makes sense your mind is trying to protect you.",
	},
	emotion.Joy: {
		"That sounds meaningful.",
		"There’s warmth in what you're sharing.",
		"Moments like that stay with people.",
	},
	emotion.Love: {
		"That connection seems important.",
		"There’s emotional depth here.",
		"That kind of bond shapes us.",
	},
	emotion.Neutral: {
		"I'm here with you.",
		"Take your time.",
		"You can share at your own pace.",
	},
}

var joyAffirmations = []string{
	"That sounds meaningful.",
	"There’s warmth in what you're sharing.",
	"Moments like that matter.",
}

var patternSuffixes = map[emotion.Pattern]string{
	emotion.PatternPersistentSadness: " It seems this feeling has been staying with you for some time.",
	emotion.PatternAnxiety:           " There seems to be a recurring sense of worry here.",
	emotion.PatternEmotionalDistress: " You've been carrying intense emotions repeatedly.",
}

var holdingLines = []string{
	"I want to stay with this feeling with you.",
	"We don't need to rush past this.",
	"Let's sit with this together for a moment.",
}

const anxietyReassurance = " You're not alone in this, even if it feels that way right now."

var shortSupport = []string{
	"I'm here.",
	"I understand.",
	"Go on.",
}

var mediumQuestions = []string{
	"What’s been affecting you most?",
	"When did this begin feeling stronger?",
	"What do you think is behind this?",
}

var deepQuestions = []string{
	"What part of this feels hardest to carry?",
	"Does this connect to something deeper happening in your life?",
	"What thoughts usually come when this feeling appears?",
}

// classic style banks

var acknowledgements = map[emotion.Label][]string{
	emotion.Sadness: {
		"I'm really sorry you're feeling this way.",
		"That sounds emotionally heavy.",
		"It seems like this has been weighing on you.",
	},
	emotion.Anger: {
		"That sounds really frustrating.",
		"I can sense a lot of tension there.",
		"That would make anyone feel upset.",
	},
	emotion.Fear: {
		"That sounds really overwhelming.",
		"I understand why that would worry you.",
		"That kind of uncertainty can feel intense.",
	},
	emotion.Joy: {
		"That sounds really positive.",
		"I'm glad something is going well for you.",
		"That must feel uplifting.",
	},
	emotion.Love: {
		"That sounds meaningful.",
		"That connection seems important to you.",
		"Moments like that can feel special.",
	},
	emotion.Neutral: {
		"I'm here with you.",
		"I'm listening.",
		"Tell me more.",
	},
}

var reflections = []string{
	"It sounds like this has been on your mind a lot lately.",
	"This situation seems to be affecting you deeply.",
	"You're carrying a lot internally.",
	"That must take a lot of emotional energy.",
}

var questions = []string{
	"What has been the hardest part of this for you?",
	"When did this start feeling this intense?",
	"What do you think is contributing most to this feeling?",
	"Would you like to talk more about what’s behind this?",
}

var supportLines = []string{
	"You're not alone in this.",
	"I'm here to listen.",
	"We can work through this step by step.",
	"Your feelings are completely valid.",
}

var themeLines = map[Theme]string{
	ThemeStress:  "You've been under pressure for a while now.",
	ThemeSadness: "It seems this sadness has been staying with you.",
	ThemeFear:    "There seems to be a growing sense of worry here.",
}
