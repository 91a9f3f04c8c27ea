package eventlog

// Platform events
var (
	SequenceUpdate             = define("ArrayDesignSequenceUpdateEvent", GroupPlatformAnalysis)
	SequenceAnalysis           = define("ArrayDesignSequenceAnalysisEvent", GroupPlatformAnalysis)
	SequenceAnalysisByParent   = specialize(SequenceAnalysis, "ParentSequenceAnalysisEvent")
	RepeatScan                 = define("ArrayDesignRepeatAnalysisEvent", GroupPlatformAnalysis)
	RepeatScanByParent         = specialize(RepeatScan, "ParentRepeatAnalysisEvent")
	GeneMapping                = define("ArrayDesignGeneMappingEvent", GroupPlatformAnalysis)
	AlignmentBasedGeneMapping  = specialize(GeneMapping, "AlignmentBasedGeneMappingEvent")
	AnnotationBasedGeneMapping = specialize(GeneMapping, "AnnotationBasedGeneMappingEvent")
	GeneMappingByParent        = specialize(GeneMapping, "ParentGeneMappingEvent")
	AnnotationFile             = define("ArrayDesignAnnotationFileEvent", GroupPlatformAnalysis)
	AnnotationFileByParent     = specialize(AnnotationFile, "ParentAnnotationFileEvent")
)

// Experiment events
var (
	BatchInfoFetch             = define("BatchInformationFetchingEvent", GroupExperimentAnalysis)
	PlatformSwitch             = define("ExpressionExperimentPlatformSwitchEvent", GroupExperimentAnalysis)
	ProcessedVectors           = define("ProcessedVectorComputationEvent", GroupExperimentAnalysis)
	ProcessedVectorsByParent   = specialize(ProcessedVectors, "ParentProcessedVectorComputationEvent")
	MissingValues              = define("MissingValueAnalysisEvent", GroupExperimentAnalysis)
	MissingValuesByParent      = specialize(MissingValues, "ParentMissingValueAnalysisEvent")
	DiffExpression             = define("DifferentialExpressionAnalysisEvent", GroupExperimentAnalysis)
	DiffExpressionByParent     = specialize(DiffExpression, "ParentDifferentialExpressionAnalysisEvent")
	LinkAnalysis               = define("LinkAnalysisEvent", GroupExperimentAnalysis)
	LinkAnalysisByParent       = specialize(LinkAnalysis, "ParentLinkAnalysisEvent")
)

// Curation marks
var (
	Troubled    = define("TroubledStatusFlagEvent", GroupCuration)
	NotTroubled = define("NotTroubledStatusFlagEvent", GroupCuration)
	Note        = define("CommentedEvent", GroupCuration)
)
