package batch

import (
	"context"
	"strings"
	"testing"

	"multibroker-console/internal/types"
)

func pendingRows(symbols ...string) []types.Order {
	rows := make([]types.Order, 0, len(symbols))
	for i, s := range symbols {
		rows = append(rows, types.Order{
			Name:    "A",
			Symbol:  s,
			OrderID: string(rune('1' + i)),
			Status:  "PENDING",
			Price:   100,
		})
	}
	return rows
}

func TestValidateModifyEmptySelection(t *testing.T) {
	_, err := ValidateModify(nil, ModifyForm{Quantity: "10"})
	if KindOf(err) != EmptySelection {
		t.Errorf("Expected EmptySelection, got %v", err)
	}
}

func TestValidateModifyAcceptsFormatVariantsOfSameSymbol(t *testing.T) {
	rows := pendingRows("BANKNIFTY 28 NOV 2024 FUT", "BANKNIFTY 28-NOV-2024-FUT")
	target, err := ValidateModify(rows, ModifyForm{Quantity: "10"})
	if err != nil {
		t.Fatalf("Expected variants of one instrument to validate, got %v", err)
	}
	if target.Key != "BANKNIFTY-NOV2024" {
		t.Errorf("Unexpected canonical key %q", target.Key)
	}
}

func TestValidateModifyMixedSymbols(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT", "TCS 28 NOV 2024 FUT")
	_, err := ValidateModify(rows, ModifyForm{Quantity: "10"})
	if KindOf(err) != MixedSymbols {
		t.Fatalf("Expected MixedSymbols, got %v", err)
	}

	// Diagnostic must list each row's resolved key.
	msg := err.Error()
	if !strings.Contains(msg, "RELIANCE-NOV2024") || !strings.Contains(msg, "TCS-NOV2024") {
		t.Errorf("Expected both resolved keys in diagnostic, got %q", msg)
	}
}

func TestValidateModifyStoplossNeedsTrigger(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	_, err := ValidateModify(rows, ModifyForm{OrderType: "STOPLOSS", Price: "100.5"})
	if KindOf(err) != MissingRequiredField {
		t.Fatalf("Expected MissingRequiredField, got %v", err)
	}
	var ve *Error
	if !asError(err, &ve) || ve.Field != "triggerPrice" {
		t.Errorf("Expected triggerPrice to be named, got %+v", ve)
	}
}

func TestValidateModifyLimitNeedsPrice(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	_, err := ValidateModify(rows, ModifyForm{OrderType: "LIMIT"})
	var ve *Error
	if !asError(err, &ve) || ve.Kind != MissingRequiredField || ve.Field != "price" {
		t.Errorf("Expected MissingRequiredField(price), got %v", err)
	}
}

func TestValidateModifySLMarketNeedsTriggerOnly(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	if _, err := ValidateModify(rows, ModifyForm{OrderType: "SL MARKET", TriggerPrice: "99"}); err != nil {
		t.Errorf("Expected SL_MARKET with trigger only to validate, got %v", err)
	}
}

func TestValidateModifyNothingToModify(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	_, err := ValidateModify(rows, ModifyForm{})
	if KindOf(err) != NothingToModify {
		t.Errorf("Expected NothingToModify, got %v", err)
	}
}

func TestValidateModifyRejectsNonPositiveFields(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	for _, form := range []ModifyForm{
		{Quantity: "0"},
		{Quantity: "-5"},
		{Quantity: "ten"},
		{Price: "-1.5"},
		{TriggerPrice: "0"},
	} {
		if _, err := ValidateModify(rows, form); KindOf(err) != InvalidField {
			t.Errorf("Expected InvalidField for %+v, got %v", form, err)
		}
	}
}

func TestValidateModifySnapshotsRows(t *testing.T) {
	rows := pendingRows("RELIANCE 28 NOV 2024 FUT")
	target, err := ValidateModify(rows, ModifyForm{Quantity: "10"})
	if err != nil {
		t.Fatal(err)
	}

	// A refresh overwriting the source rows must not touch the target.
	rows[0].Price = 9999
	rows[0].Symbol = "CHANGED"
	if target.Orders[0].Price != 100 || target.Orders[0].Symbol != "RELIANCE 28 NOV 2024 FUT" {
		t.Error("Expected target to snapshot row values at validation time")
	}
}

func TestValidateCloseFlipsNothingButChecks(t *testing.T) {
	_, err := ValidateClose(nil)
	if KindOf(err) != EmptySelection {
		t.Errorf("Expected EmptySelection, got %v", err)
	}

	_, err = ValidateClose([]types.Position{{Symbol: "X", Quantity: 0}})
	if KindOf(err) != InvalidField {
		t.Errorf("Expected InvalidField for flat position, got %v", err)
	}
}

func TestValidateGroup(t *testing.T) {
	members := []types.GroupMember{{Broker: "dhan", UserID: "U2"}}

	if _, err := ValidateGroup(GroupForm{Name: " ", Multiplier: "1", Members: members}); KindOf(err) != MissingRequiredField {
		t.Errorf("Expected MissingRequiredField for blank name, got %v", err)
	}
	if _, err := ValidateGroup(GroupForm{Name: "G1", Multiplier: "1"}); KindOf(err) != NoMembersSelected {
		t.Errorf("Expected NoMembersSelected, got %v", err)
	}
	if _, err := ValidateGroup(GroupForm{Name: "G1", Multiplier: "-2", Members: members}); KindOf(err) != InvalidField {
		t.Errorf("Expected hard failure for non-positive group multiplier, got %v", err)
	}

	g, err := ValidateGroup(GroupForm{Name: "G1", Multiplier: "", Members: members})
	if err != nil {
		t.Fatal(err)
	}
	if g.Multiplier != 1 {
		t.Errorf("Expected blank multiplier to default to 1, got %v", g.Multiplier)
	}

	g, err = ValidateGroup(GroupForm{Name: "G1", Multiplier: "0.30", Members: members})
	if err != nil {
		t.Fatal(err)
	}
	if g.Multiplier != 0.3 {
		t.Errorf("Expected 0.3, got %v", g.Multiplier)
	}
}

func TestValidateCopySetupMasterIsChild(t *testing.T) {
	ctx := context.Background()
	form := CopyForm{
		Name:   "S1",
		Master: "U1",
		Children: []ChildPick{
			{ClientID: "U1", Multiplier: "2"},
			{ClientID: "U2", Multiplier: "1"},
		},
	}
	_, err := ValidateCopySetup(ctx, form)
	if KindOf(err) != MasterIsChild {
		t.Errorf("Expected MasterIsChild before any request is built, got %v", err)
	}
}

func TestValidateCopySetupCoercesMultipliers(t *testing.T) {
	ctx := context.Background()
	form := CopyForm{
		Name:   "S1",
		Master: "U1",
		Children: []ChildPick{
			{ClientID: "U2", Multiplier: "2.5"},
			{ClientID: "U3", Multiplier: "-4"},
			{ClientID: "U4", Multiplier: ""},
			{ClientID: "U5", Multiplier: "abc"},
		},
	}
	setup, err := ValidateCopySetup(ctx, form)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"U2": 2.5, "U3": 1, "U4": 1, "U5": 1}
	for id, m := range want {
		if setup.Multipliers[id] != m {
			t.Errorf("Multiplier for %s = %v, want %v", id, setup.Multipliers[id], m)
		}
	}
	if len(setup.Children) != 4 {
		t.Errorf("Expected 4 children, got %d", len(setup.Children))
	}
}

func TestValidateCopySetupRequiredFields(t *testing.T) {
	ctx := context.Background()
	if _, err := ValidateCopySetup(ctx, CopyForm{Master: "U1", Children: []ChildPick{{ClientID: "U2"}}}); KindOf(err) != MissingRequiredField {
		t.Errorf("Expected MissingRequiredField for blank name, got %v", err)
	}
	if _, err := ValidateCopySetup(ctx, CopyForm{Name: "S1", Children: []ChildPick{{ClientID: "U2"}}}); KindOf(err) != MissingRequiredField {
		t.Errorf("Expected MissingRequiredField for blank master, got %v", err)
	}
	if _, err := ValidateCopySetup(ctx, CopyForm{Name: "S1", Master: "U1"}); KindOf(err) != NoMembersSelected {
		t.Errorf("Expected NoMembersSelected, got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}
