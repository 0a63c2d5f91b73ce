package storage

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutrisense-server-go/internal/domain/analysis"
	"nutrisense-server-go/internal/platform/errors"
)

const (
	shareCodeLength   = 10
	shareCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	shareCodeAttempts = 5
)

// SharedAnalysis is one published analysis, addressable by share code.
// Structured parts of the record are stored as JSON columns.
type SharedAnalysis struct {
	ID                 uint           `gorm:"primaryKey"                              json:"id"`
	ShareCode          string         `gorm:"type:varchar(16);uniqueIndex;not null"   json:"share_code"`
	ProductName        string         `                                               json:"product_name"`
	Verdict            string         `gorm:"not null"                                json:"verdict"`
	VerdictExplanation string         `gorm:"type:text"                               json:"verdict_explanation"`
	HealthScore        int            `                                               json:"health_score"`
	Confidence         int            `                                               json:"confidence"`
	QuickAdvice        datatypes.JSON `                                               json:"quick_advice"`
	Ingredients        datatypes.JSON `                                               json:"ingredients"`
	Tradeoffs          datatypes.JSON `                                               json:"tradeoffs"`
	CreatedAt          time.Time      `                                               json:"created_at"`
}

func (SharedAnalysis) TableName() string {
	return "shared_analyses"
}

// ErrSharedNotFound reports a share code with no stored analysis.
var ErrSharedNotFound = errors.New(errors.KindStorage, "storage.shared", "shared analysis not found")

// SaveShared stores a record under a fresh share code and returns the code.
func (s *Store) SaveShared(record *analysis.AnalysisRecord) (string, error) {
	const op = "storage.save_shared"

	advice, err := sonic.Marshal(record.QuickAdvice)
	if err != nil {
		return "", errors.Wrap(errors.KindStorage, op, "encode advice", err)
	}
	categories, err := sonic.Marshal(record.Categories)
	if err != nil {
		return "", errors.Wrap(errors.KindStorage, op, "encode categories", err)
	}
	tradeoffs, err := sonic.Marshal(record.Tradeoffs)
	if err != nil {
		return "", errors.Wrap(errors.KindStorage, op, "encode tradeoffs", err)
	}

	row := SharedAnalysis{
		ProductName:        record.ProductName,
		Verdict:            record.Verdict,
		VerdictExplanation: record.Summary,
		HealthScore:        record.HealthScore,
		Confidence:         record.Confidence,
		QuickAdvice:        datatypes.JSON(advice),
		Ingredients:        datatypes.JSON(categories),
		Tradeoffs:          datatypes.JSON(tradeoffs),
	}

	// Codes can collide; retry with a fresh one instead of failing the share.
	var lastErr error
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		row.ID = 0
		row.ShareCode = newShareCode()
		if err := s.db.Create(&row).Error; err != nil {
			lastErr = err
			continue
		}
		s.logger.InfoTag("STORE", "shared analysis stored code=%s", row.ShareCode)
		return row.ShareCode, nil
	}
	return "", errors.Wrap(errors.KindStorage, op, "store shared analysis", lastErr)
}

// GetShared loads the analysis stored under a share code.
func (s *Store) GetShared(code string) (*analysis.AnalysisRecord, error) {
	const op = "storage.get_shared"

	var row SharedAnalysis
	err := s.db.Where("share_code = ?", code).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrSharedNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "load shared analysis", err)
	}

	record := &analysis.AnalysisRecord{
		ID:          row.ShareCode,
		ProductName: row.ProductName,
		Verdict:     row.Verdict,
		Summary:     row.VerdictExplanation,
		HealthScore: row.HealthScore,
		Confidence:  row.Confidence,
		QuickAdvice: []string{},
		Categories:  []analysis.IngredientCategory{},
		Tradeoffs:   []analysis.Tradeoff{},
	}

	// Stored JSON came from us, but decode defensively all the same.
	if len(row.QuickAdvice) > 0 {
		_ = sonic.Unmarshal(row.QuickAdvice, &record.QuickAdvice)
	}
	if len(row.Ingredients) > 0 {
		_ = sonic.Unmarshal(row.Ingredients, &record.Categories)
	}
	if len(row.Tradeoffs) > 0 {
		_ = sonic.Unmarshal(row.Tradeoffs, &record.Tradeoffs)
	}

	return record, nil
}

func newShareCode() string {
	code := make([]byte, shareCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shareCodeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			n = big.NewInt(int64(i % len(shareCodeAlphabet)))
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code)
}
