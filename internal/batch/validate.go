package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"multibroker-console/internal/logger"
	"multibroker-console/internal/symbol"
	"multibroker-console/internal/types"
)

// ModifyForm carries the raw modify-dialog fields. Blank means "keep the
// current value"; the builder omits blank fields from the wire payload
// entirely so the backend applies its no-change semantics.
type ModifyForm struct {
	OrderType    string
	Quantity     string
	Price        string
	TriggerPrice string
}

// Changes is the validated, typed form of a ModifyForm. Nil pointers mean
// the field is untouched.
type Changes struct {
	OrderType    string
	Quantity     *int
	Price        *float64
	TriggerPrice *float64
}

// ModifyTarget is the snapshot a validated modify batch operates on. Orders
// holds copies of the selected rows' field values captured at validation
// time, so a background refresh cannot change the content of an in-flight
// batch.
type ModifyTarget struct {
	Symbol  string
	Key     string
	Orders  []types.Order
	Changes Changes
}

// ValidateModify checks a modify batch: non-empty selection, all rows on the
// same canonical instrument, numeric fields positive, and the fields the
// requested order type makes mandatory present. On success it returns a
// snapshot of the selected rows plus the typed changes.
func ValidateModify(rows []types.Order, form ModifyForm) (*ModifyTarget, error) {
	if len(rows) == 0 {
		return nil, errKind(EmptySelection, "no orders selected")
	}

	key0 := symbol.Key(rows[0].Symbol, false)
	mixed := false
	keys := make([]string, len(rows))
	for i, r := range rows {
		k := symbol.Key(r.Symbol, false)
		keys[i] = fmt.Sprintf("%s → %s", r.Symbol, k)
		if k != key0 {
			mixed = true
		}
	}
	if mixed {
		return nil, &Error{Kind: MixedSymbols, Detail: "select orders with the same symbol to batch modify", Keys: keys}
	}

	var ch Changes
	var verr *Error
	if ch.Quantity, verr = parsePositiveInt("quantity", form.Quantity); verr != nil {
		return nil, verr
	}
	if ch.Price, verr = parsePositiveNumber("price", form.Price); verr != nil {
		return nil, verr
	}
	if ch.TriggerPrice, verr = parsePositiveNumber("triggerPrice", form.TriggerPrice); verr != nil {
		return nil, verr
	}

	need := RequirementsFor(form.OrderType)
	if need.Canon != NoChange {
		ch.OrderType = need.Canon
		if need.Price && ch.Price == nil {
			return nil, errField(MissingRequiredField, "price", need.Canon+" requires a price")
		}
		if need.Trigger && ch.TriggerPrice == nil {
			return nil, errField(MissingRequiredField, "triggerPrice", need.Canon+" requires a trigger price")
		}
	}
	if ch.OrderType == "" && ch.Quantity == nil && ch.Price == nil && ch.TriggerPrice == nil {
		return nil, errKind(NothingToModify, "change quantity, price, trigger price or order type")
	}

	target := &ModifyTarget{
		Symbol:  rows[0].Symbol,
		Key:     key0,
		Orders:  append([]types.Order(nil), rows...),
		Changes: ch,
	}
	return target, nil
}

// CloseTarget is the snapshot of open positions a close batch operates on.
type CloseTarget struct {
	Positions []types.Position
}

// ValidateClose snapshots the selected open positions. Rows with zero net
// quantity are already flat and are rejected rather than silently skipped.
func ValidateClose(rows []types.Position) (*CloseTarget, error) {
	if len(rows) == 0 {
		return nil, errKind(EmptySelection, "no positions selected")
	}
	for _, p := range rows {
		if p.Quantity == 0 {
			return nil, errField(InvalidField, "quantity", fmt.Sprintf("position %s is already flat", p.Symbol))
		}
	}
	return &CloseTarget{Positions: append([]types.Position(nil), rows...)}, nil
}

// GroupForm is the raw group-editor state: one shared multiplier applied to
// every member.
type GroupForm struct {
	ID         string
	Name       string
	Multiplier string
	Members    []types.GroupMember
}

// ValidateGroup checks a group definition. The group-level multiplier is a hard
// failure when non-finite or non-positive; a blank field defaults to 1.
func ValidateGroup(form GroupForm) (*types.Group, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, errField(MissingRequiredField, "name", "enter a group name")
	}
	if len(form.Members) == 0 {
		return nil, errKind(NoMembersSelected, "select at least one client")
	}

	mult := 1.0
	if strings.TrimSpace(form.Multiplier) != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(form.Multiplier))
		if err != nil || !d.IsPositive() {
			return nil, errField(InvalidField, "multiplier", "multiplier must be a positive number")
		}
		mult = d.InexactFloat64()
	}

	return &types.Group{
		ID:         form.ID,
		Name:       name,
		Multiplier: mult,
		Members:    append([]types.GroupMember(nil), form.Members...),
	}, nil
}

// ChildPick is one checked child-account row in the copy-setup editor.
type ChildPick struct {
	ClientID   string
	Multiplier string
}

// CopyForm is the raw copy-setup editor state.
type CopyForm struct {
	ID       string
	Name     string
	Master   string
	Children []ChildPick
}

// ValidateCopySetup checks a copy-trading setup. The master must not appear
// among the children. Per-child multipliers that are blank, unparseable or
// non-positive are coerced to 1 with a logged warning rather than rejected.
func ValidateCopySetup(ctx context.Context, form CopyForm) (*types.CopySetup, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, errField(MissingRequiredField, "name", "enter a setup name")
	}
	master := strings.TrimSpace(form.Master)
	if master == "" {
		return nil, errField(MissingRequiredField, "master", "select a master account")
	}
	if len(form.Children) == 0 {
		return nil, errKind(NoMembersSelected, "pick at least one child account")
	}

	setup := &types.CopySetup{
		ID:          form.ID,
		Name:        name,
		Master:      master,
		Multipliers: make(map[string]float64, len(form.Children)),
	}
	for _, c := range form.Children {
		id := strings.TrimSpace(c.ClientID)
		if id == "" {
			continue
		}
		if id == master {
			return nil, errField(MasterIsChild, "master", fmt.Sprintf("master %s cannot be its own child", master))
		}
		setup.Children = append(setup.Children, id)
		setup.Multipliers[id] = coerceMultiplier(ctx, id, c.Multiplier)
	}
	if len(setup.Children) == 0 {
		return nil, errKind(NoMembersSelected, "pick at least one child account")
	}
	return setup, nil
}

func coerceMultiplier(ctx context.Context, clientID, raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 1
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		logger.Warn(ctx, "Invalid child multiplier coerced to 1", "client_id", clientID, "value", raw)
		return 1
	}
	return d.InexactFloat64()
}

func parsePositiveInt(field, raw string) (*int, *Error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, errField(InvalidField, field, field+" must be a positive integer")
	}
	return &n, nil
}

func parsePositiveNumber(field, raw string) (*float64, *Error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return nil, errField(InvalidField, field, field+" must be a positive number")
	}
	f := d.InexactFloat64()
	return &f, nil
}
