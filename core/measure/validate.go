package measure

import (
	"github.com/measuresoftgram/msgram/schema"
)

// Policy describes which column totals are acceptable.
type Policy int

// Column policies.
const (
	// PositiveSum requires the column total to be strictly greater than zero.
	PositiveSum Policy = iota
	// NonNegativeSum requires the column total to be zero or more.
	NonNegativeSum
)

// ColumnRule is a validation requirement on one metric column.
type ColumnRule struct {
	Key        schema.MetricKey
	Policy     Policy
	Percentage bool
}

// Stable messages for column totals. Callers match on these strings.
const (
	MsgNoFiles            = "The number of files is lesser or equal than 0"
	MsgNoComplexity       = "The cyclomatic complexity of all files is lesser or equal than 0"
	MsgNoFunctions        = "The number of functions of all files is lesser or equal than 0"
	MsgNegativeComments   = "The number of files comment lines density is lesser than 0"
	MsgNegativeDuplicates = "The number of files duplicated lines density is lesser than 0"
	MsgNoTests            = "The number of tests is lesser or equal than 0"
	MsgNoIssues           = "The total number of issues is lesser or equal than 0"
	MsgNoPipelines        = "The number of build pipelines is lesser or equal than 0"
	MsgNotATable          = "Expected input to be a metric table"
)

var positiveSumMessages = map[schema.MetricKey]string{
	schema.MetricComplexity:     MsgNoComplexity,
	schema.MetricFunctions:      MsgNoFunctions,
	schema.MetricTests:          MsgNoTests,
	schema.MetricTotalIssues:    MsgNoIssues,
	schema.MetricBuildPipelines: MsgNoPipelines,
}

var nonNegativeSumMessages = map[schema.MetricKey]string{
	schema.MetricCommentLinesDensity: MsgNegativeComments,
	schema.MetricDuplicatedDensity:   MsgNegativeDuplicates,
}

// Validate checks that table is non-empty and satisfies every rule, in order.
// It returns the same table on success so calls can be chained.
func Validate(table *schema.MetricTable, rules ...ColumnRule) (*schema.MetricTable, error) {
	if table == nil {
		return nil, invalidArgument(MsgNotATable)
	}
	if table.Len() <= 0 {
		return nil, invalidMetric(MsgNoFiles)
	}
	for _, rule := range rules {
		if err := validateColumn(table, rule); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func validateColumn(table *schema.MetricTable, rule ColumnRule) error {
	total := 0.0
	for _, row := range table.Rows {
		v, ok := row.Value(rule.Key)
		if !ok {
			return invalidMetric("The metric %s is missing for file %s", rule.Key, row.Path)
		}
		if !schema.IsFinite(v) {
			return invalidMetric("The metric %s of file %s is not a finite number", rule.Key, row.Path)
		}
		total += v
	}

	switch rule.Policy {
	case PositiveSum:
		if total <= 0 {
			if msg, ok := positiveSumMessages[rule.Key]; ok {
				return invalidMetric("%s", msg)
			}
			return invalidMetric("The sum of %s of all files is lesser or equal than 0", rule.Key)
		}
	case NonNegativeSum:
		if total < 0 {
			if msg, ok := nonNegativeSumMessages[rule.Key]; ok {
				return invalidMetric("%s", msg)
			}
			return invalidMetric("The sum of %s of all files is lesser than 0", rule.Key)
		}
	}

	for _, row := range table.Rows {
		v := row.Metrics[rule.Key]
		if v < 0 {
			return invalidMetric("The metric %s of file %s is lesser than 0", rule.Key, row.Path)
		}
		if rule.Percentage && v > 100 {
			return invalidMetric("The metric %s of file %s is greater than 100", rule.Key, row.Path)
		}
	}
	return nil
}
