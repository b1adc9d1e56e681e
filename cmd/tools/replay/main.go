// Command replay feeds a scripted conversation through the reply engine and
// prints each reply with the detector state, then the session summary.
//
// Input lines are either "label<TAB>text" or plain text, which is labelled
// by the keyword analyzer. Blank lines and lines starting with # are skipped.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/summary"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

const replaySession = "replay"

func main() {
	in := flag.String("in", "", "对话脚本路径，留空读取标准输入")
	seed := flag.Int64("seed", 1, "回复随机种子")
	style := flag.String("style", string(therapy.StyleAdaptive), "回复风格: adaptive 或 classic")
	flag.Parse()

	input := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("无法打开输入文件: %v", err)
		}
		defer f.Close()
		input = f
	}

	if err := run(input, os.Stdout, *seed, therapy.ParseStyle(*style)); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}

func run(in io.Reader, out io.Writer, seed int64, style therapy.Style) error {
	engine := therapy.NewEngine(
		therapy.WithStyle(style),
		therapy.WithRandom(therapy.NewRandom(seed)),
	)
	summaries := summary.NewAggregator()

	scanner := bufio.NewScanner(in)
	turn := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		label, text := parseLine(line)
		turn++

		summaries.Update(replaySession, text, label)
		reply := engine.HandleTurn(replaySession, text, label)
		state := engine.Snapshot(replaySession)

		fmt.Fprintf(out, "#%d [%s] %s\n", turn, label, text)
		fmt.Fprintf(out, "   pattern=%s intensity=%s progression=%s\n", state.Pattern, state.Intensity, state.Progression)
		fmt.Fprintf(out, "   bot: %s\n", reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	stats := summaries.Generate(replaySession)
	if stats == nil {
		fmt.Fprintln(out, "no messages")
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", stats.Report())
	return nil
}

func parseLine(line string) (emotion.Label, string) {
	if raw, text, ok := strings.Cut(line, "\t"); ok {
		if label, valid := emotion.Parse(raw); valid {
			return label, strings.TrimSpace(text)
		}
	}
	return emotion.Analyze(line).Emotion, line
}
