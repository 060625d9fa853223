package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"multibroker-console/internal/api"
	"multibroker-console/internal/batch"
	"multibroker-console/internal/logger"
	"multibroker-console/internal/trace"
	"multibroker-console/internal/types"
)

// FailureClass tells the operator whether to retry (unreachable) or fix the
// payload (rejected).
type FailureClass string

const (
	BackendRejected    FailureClass = "BACKEND_REJECTED"
	NetworkUnreachable FailureClass = "NETWORK_UNREACHABLE"
)

// Outcome is one row's fate within a batch.
type Outcome struct {
	Key   string       `json:"key"`
	Class FailureClass `json:"class,omitempty"`
	Err   string       `json:"error,omitempty"`
}

func (o Outcome) Failed() bool { return o.Err != "" }

// Result is the aggregate outcome of one submitted batch.
type Result struct {
	BatchID     string    `json:"batch_id"`
	Operation   string    `json:"operation"`
	SubmittedAt time.Time `json:"submitted_at"`
	Total       int       `json:"total"`
	Outcomes    []Outcome `json:"outcomes"`
}

func (r *Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Failed() {
			n++
		}
	}
	return n
}

// verb maps the operation to its past-tense summary word.
var verbs = map[string]string{
	"MODIFY": "Modified",
	"CANCEL": "Cancelled",
	"CLOSE":  "Closed",
	"PLACE":  "Placed",
}

const maxFailureDetails = 5

// Summary renders the operator-facing batch outcome: the count line plus at
// most five failure details.
func (r *Result) Summary() string {
	verb := verbs[r.Operation]
	if verb == "" {
		verb = r.Operation
	}
	noun := "order(s)"
	if r.Operation == "CLOSE" {
		noun = "position(s)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d of %d %s", verb, r.Succeeded(), r.Total, noun)

	shown := 0
	hidden := 0
	for _, o := range r.Outcomes {
		if !o.Failed() {
			continue
		}
		if shown == maxFailureDetails {
			hidden++
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %s", o.Key, o.Err)
		shown++
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "\n  … and %d more failure(s)", hidden)
	}
	return b.String()
}

// Recorder persists submitted batches. Implemented by the action log.
type Recorder interface {
	Record(ctx context.Context, result *Result) error
}

// Backend is the slice of the router surface a dispatcher needs.
type Backend interface {
	PlaceOrder(ctx context.Context, req *batch.PlaceOrderRequest) error
	ModifyOrder(ctx context.Context, req *batch.ModifyOrderRequest) error
	CancelOrders(ctx context.Context, req *batch.CancelOrderRequest) error
	ClosePositions(ctx context.Context, req *batch.ClosePositionRequest) error
}

// Dispatcher turns validated batches into backend calls.
type Dispatcher struct {
	backend       Backend
	recorder      Recorder
	maxConcurrent int
}

func New(backend Backend, recorder Recorder, maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Dispatcher{backend: backend, recorder: recorder, maxConcurrent: maxConcurrent}
}

// classify maps a call error to an outcome string. Cancellation is neither a
// rejection nor a network fault: the operator tore the batch down on purpose.
func classify(err error) (FailureClass, string) {
	var se *api.StatusError
	if errors.As(err, &se) {
		return BackendRejected, fmt.Sprintf("backend rejected (HTTP %d)", se.StatusCode)
	}
	return NetworkUnreachable, "backend unreachable"
}

func outcomeFor(key string, err error) Outcome {
	if err == nil {
		return Outcome{Key: key}
	}
	class, label := classify(err)
	return Outcome{Key: key, Class: class, Err: fmt.Sprintf("%s: %v", label, err)}
}

func (d *Dispatcher) finish(ctx context.Context, r *Result) *Result {
	logger.Batch(ctx, r.Operation, r.BatchID, r.Total, r.Succeeded())
	if d.recorder != nil {
		if err := d.recorder.Record(ctx, r); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record batch", err, "batch_id", r.BatchID)
		}
	}
	return r
}

// Modify submits one request per selected order, fanned out with bounded
// concurrency. Order of outcomes matches the order of the validated rows.
func (d *Dispatcher) Modify(ctx context.Context, target *batch.ModifyTarget) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "dispatch.Modify")
	defer span.End()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	reqs := batch.BuildModifyRequests(target)
	r := &Result{
		BatchID:     uuid.NewString(),
		Operation:   "MODIFY",
		SubmittedAt: time.Now(),
		Total:       len(reqs),
	}

	p := pool.NewWithResults[Outcome]().WithMaxGoroutines(d.maxConcurrent)
	for _, req := range reqs {
		req := req
		p.Go(func() Outcome {
			key := req.Order.OrderID
			if ctx.Err() != nil {
				return Outcome{Key: key, Class: NetworkUnreachable, Err: "submission cancelled"}
			}
			return outcomeFor(key, d.backend.ModifyOrder(ctx, &req))
		})
	}
	r.Outcomes = p.Wait()

	return d.finish(ctx, r), nil
}

// Cancel submits all selected orders in a single request. The backend
// acks or rejects the batch as a whole.
func (d *Dispatcher) Cancel(ctx context.Context, rows []types.Order) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "dispatch.Cancel")
	defer span.End()

	if len(rows) == 0 {
		return nil, &batch.Error{Kind: batch.EmptySelection, Detail: "no orders selected"}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req := batch.BuildCancelRequest(rows)
	r := &Result{
		BatchID:     uuid.NewString(),
		Operation:   "CANCEL",
		SubmittedAt: time.Now(),
		Total:       len(rows),
	}

	err := d.backend.CancelOrders(ctx, &req)
	for _, o := range req.Orders {
		r.Outcomes = append(r.Outcomes, outcomeFor(o.OrderID, err))
	}

	return d.finish(ctx, r), nil
}

// Close squares off the selected positions in a single request.
func (d *Dispatcher) Close(ctx context.Context, target *batch.CloseTarget) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "dispatch.Close")
	defer span.End()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req := batch.BuildCloseRequest(target)
	r := &Result{
		BatchID:     uuid.NewString(),
		Operation:   "CLOSE",
		SubmittedAt: time.Now(),
		Total:       len(req.Positions),
	}

	err := d.backend.ClosePositions(ctx, &req)
	for _, p := range req.Positions {
		r.Outcomes = append(r.Outcomes, outcomeFor(p.Symbol, err))
	}

	return d.finish(ctx, r), nil
}

// Place submits a validated trade ticket.
func (d *Dispatcher) Place(ctx context.Context, req *batch.PlaceOrderRequest) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "dispatch.Place")
	defer span.End()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r := &Result{
		BatchID:     uuid.NewString(),
		Operation:   "PLACE",
		SubmittedAt: time.Now(),
		Total:       1,
	}
	r.Outcomes = append(r.Outcomes, outcomeFor(req.Symbol, d.backend.PlaceOrder(ctx, req)))

	return d.finish(ctx, r), nil
}
