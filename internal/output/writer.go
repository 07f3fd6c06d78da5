package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
)

// Writer persists matrices as wide tables (V6)
// ⭐ SSOT: 결과 파일 포맷(헤더/날짜/숫자 표기)은 여기서만
//
// 포맷은 확장자로 결정 (.xlsx → 엑셀, 그 외 CSV). 기존 파일은 통째로 교체.
type Writer struct {
	logger *logger.Logger
}

// NewWriter creates a new writer
func NewWriter(logger *logger.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteVolatility writes the annualized volatility matrix
func (w *Writer) WriteVolatility(path string, vol *contracts.VolatilityMatrix) error {
	return w.WriteFrame(path, "volatility", &vol.Frame)
}

// WriteWeights writes a weight matrix (pre- or post-cap)
func (w *Writer) WriteWeights(path string, weights *contracts.WeightMatrix) error {
	return w.WriteFrame(path, sheetOf(weights), &weights.Frame)
}

// WriteWeightPair writes the pre- and post-cap files together.
// 두 임시 파일이 모두 써진 뒤에만 교체하므로, 실패 시 이전 실행의 파일 쌍이 그대로 남음
func (w *Writer) WriteWeightPair(prePath, postPath string, pre, post *contracts.WeightMatrix) error {
	preTmp, err := w.stage(prePath, sheetOf(pre), &pre.Frame)
	if err != nil {
		return fmt.Errorf("write pre-cap weights: %w", err)
	}
	defer os.Remove(preTmp)

	postTmp, err := w.stage(postPath, sheetOf(post), &post.Frame)
	if err != nil {
		return fmt.Errorf("write post-cap weights: %w", err)
	}
	defer os.Remove(postTmp)

	if err := w.commit(preTmp, prePath, &pre.Frame); err != nil {
		return fmt.Errorf("write pre-cap weights: %w", err)
	}
	if err := w.commit(postTmp, postPath, &post.Frame); err != nil {
		return fmt.Errorf("write post-cap weights: %w", err)
	}
	return nil
}

// WriteFrame writes any frame; parent directories are created and the file is replaced atomically
func (w *Writer) WriteFrame(path, sheet string, f *contracts.Frame) error {
	tmpPath, err := w.stage(path, sheet, f)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath) // rename 이후에는 no-op

	return w.commit(tmpPath, path, f)
}

// stage writes f to a temp file next to path and returns the temp path
func (w *Writer) stage(path, sheet string, f *contracts.Frame) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	switch s0_data.FormatOf(path) {
	case s0_data.FormatXLSX:
		err = writeXLSX(tmpPath, sheet, f)
	default:
		err = writeCSV(tmpPath, f)
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return tmpPath, nil
}

func (w *Writer) commit(tmpPath, path string, f *contracts.Frame) error {
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path":   path,
		"format": string(s0_data.FormatOf(path)),
		"rows":   f.Rows(),
		"cols":   f.Cols(),
	}).Info("Table written")

	return nil
}

func sheetOf(weights *contracts.WeightMatrix) string {
	if weights.Capped {
		return "weights_after_caps"
	}
	return "weights_before_caps"
}
