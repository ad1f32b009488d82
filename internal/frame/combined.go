package frame

import (
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// Combined is the final feature matrix with its label column, joined on RowID.
type Combined struct {
	features *FeatureTable
	labels   *LabelTable
}

// Join pairs every feature row with the label carrying the same RowID. The
// result follows feature row order. Rows present on only one side are an
// alignment error.
func Join(features *FeatureTable, labels *LabelTable) (*Combined, error) {
	if features.NumRows() != labels.NumRows() {
		return nil, common.NewAlignmentError(fmt.Sprintf("%d feature rows but %d label rows",
			features.NumRows(), labels.NumRows()))
	}
	aligned, err := labels.Restrict(features.rows)
	if err != nil {
		return nil, err
	}
	return &Combined{features: features, labels: aligned}, nil
}

func (c *Combined) Features() *FeatureTable { return c.features }

func (c *Combined) Labels() *LabelTable { return c.labels }

func (c *Combined) NumRows() int { return c.features.NumRows() }

// Header returns the feature columns followed by the label column.
func (c *Combined) Header() []string {
	return append(c.features.Columns(), c.labels.column)
}

func (c *Combined) RowID(r int) RowID { return c.features.rows[r] }

// Values returns row r as typed values: int for indicators, float64 for the
// label.
func (c *Combined) Values(r int) []any {
	out := make([]any, 0, c.features.NumCols()+1)
	for col := range c.features.columns {
		out = append(out, int(c.features.values[col][r]))
	}
	return append(out, labelFloat64(c.labels.values[r]))
}

// labelFloat64 widens v without exposing float32 rounding noise.
func labelFloat64(v float32) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
	return f
}

// Record returns row r formatted as strings.
func (c *Combined) Record(r int) []string {
	out := make([]string, 0, c.features.NumCols()+1)
	for col := range c.features.columns {
		out = append(out, strconv.Itoa(int(c.features.values[col][r])))
	}
	return append(out, strconv.FormatFloat(float64(c.labels.values[r]), 'f', -1, 32))
}
