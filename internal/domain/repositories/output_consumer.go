package repositories

import "github.com/rios0rios0/scmforge/internal/domain/entities"

// OutputConsumer receives tool output one line at a time, without the line terminator.
type OutputConsumer interface {
	ConsumeLine(line string)
}

// ResultConsumer is an OutputConsumer that contributes its parsed records to a result.
// Apply may also turn the result into a failure.
type ResultConsumer interface {
	OutputConsumer
	Apply(result *entities.ScmResult)
}
