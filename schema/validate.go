package schema

import (
	"fmt"
	"strings"

	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/go_utils"
)

// Validate checks the required-column contract and the row floor.
// It never fails on content: a verdict is always returned.
func Validate(frame *models.RawFrame) models.ValidationVerdict {
	var names []string
	if frame != nil {
		names = frame.Names()
	}
	verdict := models.ValidationVerdict{Rows: frame.NumRows()}

	for _, col := range Required {
		if !go_utils.InArray(col, names) {
			verdict.MissingRequired = append(verdict.MissingRequired, col)
		}
	}
	for _, col := range Optional {
		if !go_utils.InArray(col, names) {
			verdict.MissingOptional = append(verdict.MissingOptional, col)
		}
	}

	var problems []string
	if len(verdict.MissingRequired) > 0 {
		problems = append(problems, "Kolom wajib yang hilang: "+strings.Join(verdict.MissingRequired, ", "))
	}
	if verdict.Rows < MinRows {
		problems = append(problems, fmt.Sprintf("Data terlalu sedikit (%d baris). Minimal %d baris diperlukan", verdict.Rows, MinRows))
	}
	if len(problems) > 0 {
		verdict.Message = strings.Join(problems, ". ")
		return verdict
	}

	verdict.Valid = true
	verdict.Message = "Data valid!"
	return verdict
}
