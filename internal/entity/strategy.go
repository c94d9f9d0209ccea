package entity

// PreprocessStrategy is the preprocessing mode chosen for a block of text.
type PreprocessStrategy string

const (
	StrategyDirect    PreprocessStrategy = "direct"
	StrategyChunk     PreprocessStrategy = "chunk"
	StrategySummarize PreprocessStrategy = "summarize"
)

func (s PreprocessStrategy) String() string {
	return string(s)
}
