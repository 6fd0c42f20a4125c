package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ExecEngine drives the tesseract binary. Directory pages are set in narrow
// columns that different page segmentation modes handle very differently,
// so each configured PSM is tried and the longest recognition wins.
type ExecEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExecEngine(cfg Config, logger *slog.Logger) *ExecEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if len(cfg.PSMs) == 0 {
		cfg.PSMs = []int{3, 4, 6}
	}
	if cfg.Retries == 0 {
		cfg.Retries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	runner := cfg.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return &ExecEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *ExecEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	res := Result{Method: "tesseract-exec"}
	var lastErr error
	got := false

	for _, psm := range e.cfg.PSMs {
		txt, warns, err := e.recognizePSM(ctx, imagePath, psm)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			lastErr = err
			continue
		}
		if !got || len(txt) > len(res.Text) {
			res.Text = txt
			res.PSM = psm
			got = true
		}
	}
	if !got {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("tesseract produced no text: %w", lastErr)
	}

	heur := heuristicConfidence(res.Text)
	res.Confidence = heur
	if e.cfg.EnableTSV {
		if tsv, err := e.tsvConfidence(ctx, imagePath, res.PSM); err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else if tsv > 0 {
			res.Confidence = 0.7*tsv + 0.3*heur
		}
	}
	if res.Confidence > 1.0 {
		res.Confidence = 1.0
	}

	res.Duration = time.Since(start)
	e.logger.Debug("ocr.exec.done",
		"path", imagePath,
		"psm", res.PSM,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (e *ExecEngine) recognizePSM(ctx context.Context, imagePath string, psm int) (string, []string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(psm)}
	args = e.appendCommonArgs(args)

	var out []byte
	var warns []string
	err := retry.Do(
		func() error {
			stdout, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
			if err != nil {
				if len(stderr) > 0 {
					warns = append(warns, truncate(string(stderr), 512))
				}
				return fmt.Errorf("tesseract psm %d: %w", psm, err)
			}
			out = stdout
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.cfg.Retries+1),
		retry.Delay(e.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("ocr.exec.retry", "attempt", n+1, "psm", psm, "error", err)
		}),
	)
	if err != nil {
		return "", warns, err
	}
	return string(out), warns, nil
}

// tsvConfidence reruns tesseract in TSV mode and returns the mean word
// confidence in 0..1.
func (e *ExecEngine) tsvConfidence(ctx context.Context, imagePath string, psm int) (float32, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(psm)}
	args = e.appendCommonArgs(args)
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		if len(errb) > 0 {
			return 0, fmt.Errorf("tesseract tsv: %s: %w", truncate(string(errb), 512), err)
		}
		return 0, fmt.Errorf("tesseract tsv: %w", err)
	}

	// columns: level page block par line word left top width height conf text;
	// -1 conf marks non-word rows
	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float32(sum / n / 100.0), nil
}

func (e *ExecEngine) appendCommonArgs(args []string) []string {
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
