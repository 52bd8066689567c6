package modeling

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"nfl-projections-go/models"

	"github.com/google/uuid"
)

var (
	ErrNoWeights      = errors.New("no saved weights")
	ErrCorruptWeights = errors.New("corrupt weights file")
)

var weightsMagic = [4]byte{'N', 'F', 'L', 'W'}

const weightsVersion uint32 = 1

// Limits on header counts, checked before allocating.
const (
	maxWeightsFeatures   = 1 << 20
	maxFeatureNameLength = 1 << 16
)

// WeightsStore saves and restores fitted models by target code.
type WeightsStore interface {
	Save(w models.ModelWeights) error
	Load(target string) (models.ModelWeights, error)
}

// FileWeightsStore keeps one flat binary file per target under Dir.
type FileWeightsStore struct {
	Dir string
}

// NewFileWeightsStore returns a store rooted at dir.
func NewFileWeightsStore(dir string) *FileWeightsStore {
	return &FileWeightsStore{Dir: dir}
}

// Path returns the file of target.
func (s *FileWeightsStore) Path(target string) string {
	return filepath.Join(s.Dir, target+"_linreg_weights.bin")
}

// Save writes w, creating Dir as needed.
func (s *FileWeightsStore) Save(w models.ModelWeights) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating weights dir: %w", err)
	}
	f, err := os.Create(s.Path(w.Target))
	if err != nil {
		return fmt.Errorf("creating weights file: %w", err)
	}
	if err := EncodeWeights(f, w); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing weights for %s: %w", w.Target, err)
	}
	return f.Close()
}

// Load reads target's weights. A missing file is ErrNoWeights.
func (s *FileWeightsStore) Load(target string) (models.ModelWeights, error) {
	f, err := os.Open(s.Path(target))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ModelWeights{}, fmt.Errorf("%w for %s in %s", ErrNoWeights, target, s.Dir)
		}
		return models.ModelWeights{}, err
	}
	defer f.Close()

	w, err := DecodeWeights(f)
	if err != nil {
		return models.ModelWeights{}, fmt.Errorf("reading weights for %s: %w", target, err)
	}
	w.Target = target
	return w, nil
}

// EncodeWeights writes the little-endian layout:
//
//	magic "NFLW" | version u32 | n u32 | intercept f64 | n x coef f64 |
//	n x (len u32 | utf-8 feature name)
func EncodeWeights(w io.Writer, m models.ModelWeights) error {
	if len(m.Features) != len(m.Coefficients) {
		return fmt.Errorf("%w: %d names for %d coefficients", ErrFeatureMismatch, len(m.Features), len(m.Coefficients))
	}
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	header := []any{weightsMagic, weightsVersion, uint32(len(m.Coefficients)), m.Intercept, m.Coefficients}
	for _, v := range header {
		if err := binary.Write(bw, le, v); err != nil {
			return err
		}
	}
	for _, name := range m.Features {
		if err := binary.Write(bw, le, uint32(len(name))); err != nil {
			return err
		}
		if _, err := bw.WriteString(name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeWeights reads the layout written by EncodeWeights.
func DecodeWeights(r io.Reader) (models.ModelWeights, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var magic [4]byte
	var version, n uint32
	var m models.ModelWeights
	if err := binary.Read(br, le, &magic); err != nil {
		return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	if magic != weightsMagic {
		return m, fmt.Errorf("%w: bad magic %q", ErrCorruptWeights, magic[:])
	}
	if err := binary.Read(br, le, &version); err != nil {
		return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	if version != weightsVersion {
		return m, fmt.Errorf("%w: unsupported version %d", ErrCorruptWeights, version)
	}
	if err := binary.Read(br, le, &n); err != nil {
		return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	if err := binary.Read(br, le, &m.Intercept); err != nil {
		return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	if n > maxWeightsFeatures {
		return m, fmt.Errorf("%w: %d features", ErrCorruptWeights, n)
	}
	m.Coefficients = make([]float64, n)
	if err := binary.Read(br, le, m.Coefficients); err != nil {
		return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	m.Features = make([]string, n)
	for i := range m.Features {
		var l uint32
		if err := binary.Read(br, le, &l); err != nil {
			return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
		}
		if l > maxFeatureNameLength {
			return m, fmt.Errorf("%w: feature name of %d bytes", ErrCorruptWeights, l)
		}
		buf := make([]byte, l)
		if _, err := io.ReadFull(br, buf); err != nil {
			return m, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
		}
		m.Features[i] = string(buf)
	}
	return m, nil
}

// RunRecorder persists a copy of a training run.
type RunRecorder interface {
	Insert(ctx context.Context, run models.TrainingRun) error
}

// RecordRuns stores every trained model under one new run id and returns it.
func RecordRuns(ctx context.Context, rec RunRecorder, results map[string]*TrainResult, holdout int) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC()
	for _, code := range sortedKeys(results) {
		r := results[code]
		if r.Model == nil {
			continue
		}
		run := models.TrainingRun{
			RunID:     runID,
			Target:    code,
			Holdout:   holdout,
			Weights:   r.Weights(),
			Metrics:   r.Metrics,
			CreatedAt: now,
		}
		if err := rec.Insert(ctx, run); err != nil {
			return runID, err
		}
	}
	return runID, nil
}
