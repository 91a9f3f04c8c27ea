package domain

import (
	"slices"
	"strings"

	"curator/internal/core/eventlog"
	"curator/internal/core/staleness"
	perr "curator/internal/platform/errors"
	catalog "curator/internal/services/catalog/domain"
)

var operations = []staleness.Operation{
	{
		Name:      "sequence-analysis",
		Tag:       eventlog.SequenceAnalysis,
		Propagate: eventlog.SequenceAnalysisByParent,
	},
	{
		Name:      "repeat-scan",
		Tag:       eventlog.RepeatScan,
		Propagate: eventlog.RepeatScanByParent,
	},
	{
		Name:          "gene-mapping",
		Tag:           eventlog.GeneMapping,
		Propagate:     eventlog.GeneMappingByParent,
		ExcludedKinds: []string{catalog.KindNone, catalog.KindSequencing},
		// repeat scan is not required; mapping tolerates unmasked sequences
		Requires:      []eventlog.Tag{eventlog.SequenceAnalysis},
		InvalidatedBy: eventlog.SequenceUpdate,
	},
	{
		Name:      "annotation-file",
		Tag:       eventlog.AnnotationFile,
		Propagate: eventlog.AnnotationFileByParent,
	},
	{
		Name:      "processed-vectors",
		Tag:       eventlog.ProcessedVectors,
		Propagate: eventlog.ProcessedVectorsByParent,
	},
	{
		Name:      "missing-values",
		Tag:       eventlog.MissingValues,
		Propagate: eventlog.MissingValuesByParent,
	},
	{
		Name:      "diff-expression",
		Tag:       eventlog.DiffExpression,
		Propagate: eventlog.DiffExpressionByParent,
		Requires:  []eventlog.Tag{eventlog.ProcessedVectors},
	},
	{
		Name:      "link-analysis",
		Tag:       eventlog.LinkAnalysis,
		Propagate: eventlog.LinkAnalysisByParent,
		Requires:  []eventlog.Tag{eventlog.ProcessedVectors},
	},
}

// Operation returns the registered operation called name
func Operation(name string) (staleness.Operation, error) {
	i := slices.IndexFunc(operations, func(o staleness.Operation) bool { return o.Name == name })
	if i < 0 {
		return staleness.Operation{}, perr.FatalConfigf("unknown operation %q (known: %s)", name, strings.Join(OperationNames(), ", "))
	}
	return operations[i], nil
}

// OperationNames lists registered operations in registration order
func OperationNames() []string {
	out := make([]string, len(operations))
	for i, o := range operations {
		out[i] = o.Name
	}
	return out
}
