package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestRecognizeKeepsLongestPSM(t *testing.T) {
	byPSM := map[string]string{
		"3": "short",
		"4": "the longest recognition of them all",
		"6": "middling text",
	}
	var calls int
	runner := runnerFunc(func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		calls++
		if name != "tesseract" {
			t.Fatalf("unexpected binary %q", name)
		}
		return []byte(byPSM[argValue(args, "--psm")]), nil, nil
	})

	eng := NewExecEngine(Config{Runner: runner, RetryDelay: time.Millisecond}, testLogger())
	res, err := eng.Recognize(context.Background(), "page.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.PSM != 4 || res.Text != byPSM["4"] {
		t.Fatalf("kept psm %d text %q, want psm 4", res.PSM, res.Text)
	}
	if res.Method != "tesseract-exec" {
		t.Errorf("Method = %q", res.Method)
	}
	if calls != 3 {
		t.Errorf("runner called %d times, want one per PSM", calls)
	}
}

func TestRecognizeRetriesTransientFailure(t *testing.T) {
	var attempts int
	runner := runnerFunc(func(context.Context, string, ...string) ([]byte, []byte, error) {
		attempts++
		if attempts == 1 {
			return nil, []byte("transient tesseract error"), errors.New("exit status 1")
		}
		return []byte("Smith John carp h 123 Main st"), nil, nil
	})

	eng := NewExecEngine(Config{
		Runner:     runner,
		PSMs:       []int{6},
		Retries:    2,
		RetryDelay: time.Millisecond,
	}, testLogger())
	res, err := eng.Recognize(context.Background(), "page.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want a single retry", attempts)
	}
	if res.Text == "" {
		t.Fatal("retry succeeded but text is empty")
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "transient") {
		t.Errorf("stderr not surfaced in warnings: %v", res.Warnings)
	}
}

func TestRecognizeAllAttemptsFail(t *testing.T) {
	var attempts int
	runner := runnerFunc(func(context.Context, string, ...string) ([]byte, []byte, error) {
		attempts++
		return nil, []byte("boom"), errors.New("exit status 1")
	})

	eng := NewExecEngine(Config{
		Runner:     runner,
		PSMs:       []int{6},
		Retries:    2,
		RetryDelay: time.Millisecond,
	}, testLogger())
	_, err := eng.Recognize(context.Background(), "page.png")
	if err == nil {
		t.Fatal("want error when every attempt fails")
	}
	if !strings.Contains(err.Error(), "no text") {
		t.Errorf("err = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want initial try plus two retries", attempts)
	}
}

func TestRecognizeTSVConfidence(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t80\tSmith\n" +
		"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t90\tJohn\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t0\t0\t-1\t\n"
	text := "directory text line"
	runner := runnerFunc(func(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
		if hasArg(args, "tsv") {
			return []byte(tsv), nil, nil
		}
		return []byte(text), nil, nil
	})

	eng := NewExecEngine(Config{
		Runner:     runner,
		PSMs:       []int{6},
		EnableTSV:  true,
		RetryDelay: time.Millisecond,
	}, testLogger())
	res, err := eng.Recognize(context.Background(), "page.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	// mean word conf 0.85 blended 70/30 with the text heuristic (0.65)
	want := 0.7*0.85 + 0.3*0.65
	if math.Abs(float64(res.Confidence)-want) > 1e-3 {
		t.Fatalf("Confidence = %v, want %v", res.Confidence, want)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	directoryPage := strings.Join([]string{
		"Smith John carp h 123 Main st",
		"Jones Wm lab bds 40 Elm ave",
		"Doe Robert painter res 77 Oak st",
		"Brown Jas clk bds 12 Pine ave s",
	}, "\n")

	cases := []struct {
		name string
		text string
		min  float32
		max  float32
	}{
		{"empty", "", 0, 0},
		{"garbage", "@#$%", 0.15, 0.25},
		{"directory page", directoryPage, 0.85, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := heuristicConfidence(tc.text)
			if got < tc.min || got > tc.max {
				t.Fatalf("heuristicConfidence = %v, want in [%v, %v]", got, tc.min, tc.max)
			}
		})
	}
}

func TestNewEngineFallsBackToExec(t *testing.T) {
	eng := NewEngine(Config{UseGosseract: true}, testLogger())
	if _, ok := eng.(*ExecEngine); !ok {
		t.Fatalf("engine = %T, want exec fallback without the gosseract tag", eng)
	}
}
