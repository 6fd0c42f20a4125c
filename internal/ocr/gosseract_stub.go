//go:build !gosseract

package ocr

import (
	"fmt"
	"log/slog"

	"github.com/kwheaton/canvass/internal/common"
)

func newGosseractEngine(Config, *slog.Logger) (Engine, error) {
	return nil, fmt.Errorf("built without the gosseract tag: %w", common.ErrOCRUnavailable)
}
