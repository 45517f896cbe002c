package operations

import (
	"sync"
	"time"

	"retaileda/internal/dataprocessing"
	"retaileda/internal/report"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState is the state of one analysis run. Steps hand their
// results to later steps through the artifact fields.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`
	order []string

	// Artifacts
	Raw      *dataprocessing.Table        `json:"-"` // as loaded
	Table    *dataprocessing.Table        `json:"-"` // cleaned, then derived in place
	Cleaning dataprocessing.CleaningStats `json:"cleaning"`
	Summary  *report.Summary              `json:"-"`
	Charts   []report.Chart               `json:"charts,omitempty"`
	Tables   []string                     `json:"tables,omitempty"` // exported CSV paths

	Error error `json:"error,omitempty"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage adds or replaces the state of a Step, keeping insertion order
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Steps[stageID]; !ok {
		p.order = append(p.order, stageID)
	}
	p.Steps[stageID] = state
}

// OrderedSteps returns the step states in execution order
func (p *OperationState) OrderedSteps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	steps := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		steps = append(steps, p.Steps[id])
	}
	return steps
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// IsComplete returns true if no Step is pending or active
func (p *OperationState) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		if s := step.GetStatus(); s == StepStatusPending || s == StepStatusActive {
			return false
		}
	}
	return true
}

// Response summarises the state for callers and logs
func (p *OperationState) Response() *OperationResponse {
	resp := &OperationResponse{
		ID:       p.ID,
		Duration: p.Duration(),
		Steps:    p.OrderedSteps(),
	}
	p.mu.RLock()
	resp.Status = p.Status
	if p.Error != nil {
		resp.Error = p.Error.Error()
	}
	p.mu.RUnlock()
	return resp
}
