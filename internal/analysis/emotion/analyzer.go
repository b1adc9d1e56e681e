package emotion

import "strings"

// Decision 给出关键词分析的结果。
type Decision struct {
	Emotion Label
	Score   int
}

var keywordBuckets = map[Label][]string{
	Sadness: {
		"sad", "unhappy", "cry", "crying", "depressed", "lonely", "alone", "hurt", "sorrow",
		"heartbroken", "miss ", "grief", "hopeless", "empty", "tired of",
		"难过", "伤心", "失落", "沮丧", "悲伤", "孤单", "心碎", "低落",
	},
	Anger: {
		"angry", "furious", "rage", "mad", "annoyed", "pissed", "hate", "unfair", "fed up",
		"frustrated", "irritated", "sick of",
		"生气", "愤怒", "火大", "气死", "受够了", "抓狂",
	},
	Fear: {
		"afraid", "scared", "anxious", "anxiety", "worried", "worry", "nervous", "panic",
		"terrified", "fail", "stress", "pressure", "overwhelmed", "what if",
		"害怕", "担心", "焦虑", "紧张", "恐惧",
	},
	Joy: {
		"happy", "glad", "great", "awesome", "amazing", "excited", "thanks", "thank you",
		"wonderful", "proud", "relieved", "finally",
		"开心", "高兴", "快乐", "太好了", "太棒了",
	},
	Love: {
		"love", "loved", "adore", "grateful", "care about", "close to", "my partner",
		"my family", "together", "miss you",
		"爱", "喜欢", "想念", "陪伴",
	},
}

// scan order keeps ties deterministic
var bucketOrder = []Label{Sadness, Fear, Anger, Love, Joy}

// Analyze 通过关键词推断文本情绪，没有命中时返回 neutral。
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral}
	}

	scores := make(map[Label]int, len(keywordBuckets))
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if strings.Count(text, "!") > 0 && scores[Anger] == 0 && scores[Sadness] == 0 {
		scores[Joy]++
	}

	best := Neutral
	bestScore := 0
	for _, label := range bucketOrder {
		if s := scores[label]; s > bestScore {
			best = label
			bestScore = s
		}
	}

	return Decision{Emotion: best, Score: bestScore}
}
