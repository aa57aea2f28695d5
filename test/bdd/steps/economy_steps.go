package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/adapters/persistence"
	appFactoryCommands "github.com/andrescamacho/factory-economy/internal/application/factory/commands"
	invoiceCommands "github.com/andrescamacho/factory-economy/internal/application/invoice/commands"
	invoiceQueries "github.com/andrescamacho/factory-economy/internal/application/invoice/queries"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	productionCommands "github.com/andrescamacho/factory-economy/internal/application/production/commands"
	taxCommands "github.com/andrescamacho/factory-economy/internal/application/tax/commands"
	upgradeCommands "github.com/andrescamacho/factory-economy/internal/application/upgrade/commands"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

type economyContext struct {
	h       *helpers.Harness
	backend memstore.Backend
	err     error
}

func (ec *economyContext) reset() error {
	ec.backend = nil
	ec.err = nil
	h, err := helpers.NewEngine()
	if err != nil {
		return err
	}
	ec.h = h
	return nil
}

func (ec *economyContext) player(name string) (shared.PlayerID, error) {
	switch name {
	case "alice":
		return helpers.Alice, nil
	case "bob":
		return helpers.Bob, nil
	default:
		return shared.PlayerID{}, fmt.Errorf("unknown player %q", name)
	}
}

func (ec *economyContext) money(s string) (shared.Money, error) {
	return shared.ParseMoney(s)
}

func (ec *economyContext) factory(id string) (*factory.Factory, error) {
	return ec.h.Store.Factories().Get(ec.h.Ctx, id)
}

func (ec *economyContext) send(request mediator.Request) {
	_, ec.err = ec.h.Mediator.Send(ec.h.Ctx, request)
}

// ===== Setup =====

func (ec *economyContext) theEnginePersistsToTheDatabase() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	ec.backend = persistence.NewGormSnapshotBackend(helpers.SharedTestDB)
	h, err := helpers.NewEngine(helpers.WithBackend(ec.backend))
	if err != nil {
		return err
	}
	ec.h = h
	return nil
}

func (ec *economyContext) theEngineRestarts() error {
	if ec.backend == nil {
		return fmt.Errorf("engine has no persistent backend")
	}
	now := ec.h.Clock.Now()
	h, err := helpers.NewEngine(helpers.WithBackend(ec.backend))
	if err != nil {
		return err
	}
	if err := h.Store.Load(h.Ctx); err != nil {
		return fmt.Errorf("failed to reload store: %w", err)
	}
	h.Clock.SetTime(now)
	ec.h = h
	return nil
}

func (ec *economyContext) anOwnedFactory(typ, id, price, owner string) error {
	ft, err := factory.ParseType(typ)
	if err != nil {
		return err
	}
	amount, err := ec.money(price)
	if err != nil {
		return err
	}
	player, err := ec.player(owner)
	if err != nil {
		return err
	}

	if _, err := ec.h.Container.Factories.Create(ec.h.Ctx, id, "zone-1", ft, amount); err != nil {
		return err
	}
	if err := ec.h.Host.Ledger().Deposit(ec.h.Ctx, player, amount); err != nil {
		return err
	}
	_, err = ec.h.Container.Factories.Buy(ec.h.Ctx, player, id)
	return err
}

func (ec *economyContext) playerOwnsFactories(owner string, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("factory table needs a header and at least one row")
	}
	for _, row := range table.Rows[1:] {
		id := cellValue(table, row, "id")
		if err := ec.anOwnedFactory(cellValue(table, row, "type"), id, cellValue(table, row, "price"), owner); err != nil {
			return err
		}
		if level := cellValue(table, row, "level"); level != "" && level != "1" {
			n, err := strconv.Atoi(level)
			if err != nil {
				return fmt.Errorf("invalid level %q for factory %s", level, id)
			}
			if err := ec.factoryIsAtLevel(id, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue returns the cell under columnName, or "" when the column is absent
func cellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

func (ec *economyContext) factoryIsAtLevel(id string, level int) error {
	_, err := ec.h.Container.Factories.SetLevel(ec.h.Ctx, id, level)
	return err
}

func (ec *economyContext) factoryIsStaffed(id string, percent int, wage string) error {
	amount, err := ec.money(wage)
	if err != nil {
		return err
	}
	ec.h.Staff(id, float64(percent)/100, amount.InexactFloat64())
	return nil
}

func (ec *economyContext) factoryHolds(id string, qty int, resource string) error {
	ec.h.Host.Storage().AddInput(id, resource, qty)
	return nil
}

func (ec *economyContext) playerHasBalance(name, amount string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	money, err := ec.money(amount)
	if err != nil {
		return err
	}
	ec.h.Host.Ledger().SetBalance(player, money)
	return nil
}

// ===== Time =====

func (ec *economyContext) timePasses(amount int, unit string) error {
	var d time.Duration
	switch unit {
	case "second", "seconds":
		d = time.Second
	case "minute", "minutes":
		d = time.Minute
	case "hour", "hours":
		d = time.Hour
	default:
		return fmt.Errorf("unknown unit %q", unit)
	}
	ec.h.Advance(time.Duration(amount) * d)
	return nil
}

func (ec *economyContext) theSchedulerTicks() error {
	return ec.h.Container.Scheduler.RunOnce(ec.h.Ctx)
}

// ===== Actions =====

func (ec *economyContext) playerStartsRecipe(name, recipe, id string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	ec.send(&productionCommands.StartProductionCommand{PlayerID: player, FactoryID: id, RecipeID: recipe})
	return nil
}

func (ec *economyContext) playerStartsUpgrade(name, id string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	ec.send(&upgradeCommands.StartUpgradeCommand{PlayerID: player, FactoryID: id})
	return nil
}

func (ec *economyContext) playerPaysTax(name, id string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	ec.send(&taxCommands.PayTaxCommand{PlayerID: player, FactoryID: id})
	return nil
}

func (ec *economyContext) playerPaysAllTaxes(name string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	ec.send(&taxCommands.PayAllTaxesCommand{PlayerID: player})
	return nil
}

func (ec *economyContext) playerSellsFactory(name, id string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	ec.send(&appFactoryCommands.SellFactoryCommand{PlayerID: player, FactoryID: id})
	return nil
}

func (ec *economyContext) theTaxAssessmentRuns() error {
	_, err := ec.h.Mediator.Send(ec.h.Ctx, &taxCommands.RunAssessmentCommand{})
	return err
}

func (ec *economyContext) theOverdueCheckRuns() error {
	_, err := ec.h.Mediator.Send(ec.h.Ctx, &taxCommands.RunOverdueCheckCommand{})
	return err
}

func (ec *economyContext) theSalaryRunExecutes() error {
	_, err := ec.h.Mediator.Send(ec.h.Ctx, &invoiceCommands.RunSalaryCommand{})
	return err
}

func (ec *economyContext) unpaidSalaryInvoices(ctx context.Context, player shared.PlayerID) ([]*domainInvoice.Invoice, error) {
	typ := domainInvoice.TypeSalary
	paid := false
	return mediator.Dispatch[[]*domainInvoice.Invoice](ctx, ec.h.Mediator, &invoiceQueries.ListInvoicesQuery{
		Owner: player,
		Type:  &typ,
		Paid:  &paid,
	})
}

func (ec *economyContext) playerPaysSalaryInvoice(name, id string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	invoices, err := ec.unpaidSalaryInvoices(ec.h.Ctx, player)
	if err != nil {
		return err
	}
	for _, inv := range invoices {
		if inv.FactoryID() == id {
			ec.send(&invoiceCommands.PayInvoiceCommand{PlayerID: player, InvoiceID: inv.ID()})
			return nil
		}
	}
	return fmt.Errorf("no unpaid salary invoice for factory %s", id)
}

// ===== Assertions =====

func (ec *economyContext) theRequestShouldSucceed() error {
	if ec.err != nil {
		return fmt.Errorf("expected success, got %v", ec.err)
	}
	return nil
}

func (ec *economyContext) theRequestShouldFailWithCode(code string) error {
	if ec.err == nil {
		return fmt.Errorf("expected error %s, got success", code)
	}
	if got := shared.CodeOf(ec.err); got != code {
		return fmt.Errorf("expected error code %s, got %q (%v)", code, got, ec.err)
	}
	return nil
}

func (ec *economyContext) factoryShouldBe(id, status string) error {
	f, err := ec.factory(id)
	if err != nil {
		return err
	}
	if f.Status().String() != status {
		return fmt.Errorf("expected factory %s to be %s, got %s", id, status, f.Status())
	}
	return nil
}

func (ec *economyContext) productionShouldTake(id string, seconds int) error {
	f, err := ec.factory(id)
	if err != nil {
		return err
	}
	if f.Production() == nil {
		return fmt.Errorf("factory %s has no production", id)
	}
	want := time.Duration(seconds) * time.Second
	if got := f.Production().Duration(); got != want {
		return fmt.Errorf("expected production to take %s, got %s", want, got)
	}
	return nil
}

func (ec *economyContext) productionShouldHaveRemaining(id string, seconds int) error {
	f, err := ec.factory(id)
	if err != nil {
		return err
	}
	if f.Production() == nil {
		return fmt.Errorf("factory %s has no production", id)
	}
	want := time.Duration(seconds) * time.Second
	if got := f.Production().Remaining(ec.h.Clock.Now()); got != want {
		return fmt.Errorf("expected %s remaining, got %s", want, got)
	}
	return nil
}

func (ec *economyContext) storageShouldHold(id, store string, qty int, resource string) error {
	var got int
	if store == "output" {
		got = ec.h.Host.Storage().Output(id, resource)
	} else {
		got = ec.h.Host.Storage().Input(id, resource)
	}
	if got != qty {
		return fmt.Errorf("expected %s storage of %s to hold %d %s, got %d", store, id, qty, resource, got)
	}
	return nil
}

func (ec *economyContext) factoryShouldBeAtLevel(id string, level int) error {
	f, err := ec.factory(id)
	if err != nil {
		return err
	}
	if f.Level() != level {
		return fmt.Errorf("expected factory %s at level %d, got %d", id, level, f.Level())
	}
	return nil
}

func (ec *economyContext) playerShouldHaveBalance(name, amount string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	want, err := ec.money(amount)
	if err != nil {
		return err
	}
	got, err := ec.h.Host.Ledger().Balance(ec.h.Ctx, player)
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("expected %s to have %s, got %s", name, want.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func (ec *economyContext) factoryShouldOweTax(id, amount string) error {
	want, err := ec.money(amount)
	if err != nil {
		return err
	}
	record, err := ec.h.Store.TaxRecords().Get(ec.h.Ctx, id)
	if err != nil {
		return err
	}
	if !record.AmountDue().Equal(want) {
		return fmt.Errorf("expected factory %s to owe %s, got %s", id, want.StringFixed(2), record.AmountDue().StringFixed(2))
	}
	return nil
}

func (ec *economyContext) factoryTaxOverdue(id, not string) error {
	record, err := ec.h.Store.TaxRecords().Get(ec.h.Ctx, id)
	if err != nil {
		return err
	}
	want := not == ""
	if record.Overdue() != want {
		return fmt.Errorf("expected overdue=%t for factory %s, got %t", want, id, record.Overdue())
	}
	return nil
}

func (ec *economyContext) playerShouldHaveUnpaidSalaryInvoices(name string, count int, total string) error {
	player, err := ec.player(name)
	if err != nil {
		return err
	}
	want, err := ec.money(total)
	if err != nil {
		return err
	}
	invoices, err := ec.unpaidSalaryInvoices(ec.h.Ctx, player)
	if err != nil {
		return err
	}
	if len(invoices) != count {
		return fmt.Errorf("expected %d unpaid salary invoices, got %d", count, len(invoices))
	}
	sum := shared.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.Amount())
	}
	if !sum.Equal(want) {
		return fmt.Errorf("expected unpaid salary total %s, got %s", want.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

// InitializeEconomyScenario registers the factory economy steps
func InitializeEconomyScenario(sc *godog.ScenarioContext) {
	ec := &economyContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, ec.reset()
	})

	sc.Step(`^the engine persists to the database$`, ec.theEnginePersistsToTheDatabase)
	sc.Step(`^the engine restarts$`, ec.theEngineRestarts)
	sc.Step(`^an? (\w+) factory "([^"]*)" priced at \$([\d.]+) owned by (\w+)$`, ec.anOwnedFactory)
	sc.Step(`^(\w+) owns the following factories:$`, ec.playerOwnsFactories)
	sc.Step(`^factory "([^"]*)" is at level (\d+)$`, ec.factoryIsAtLevel)
	sc.Step(`^factory "([^"]*)" is staffed with a (\d+)% time reduction and a wage of \$([\d.]+)$`, ec.factoryIsStaffed)
	sc.Step(`^factory "([^"]*)" holds (\d+) "([^"]*)"$`, ec.factoryHolds)
	sc.Step(`^(\w+) has a balance of \$([\d.]+)$`, ec.playerHasBalance)

	sc.Step(`^(\d+) (seconds?|minutes?|hours?) pass(?:es)?$`, ec.timePasses)
	sc.Step(`^the scheduler ticks$`, ec.theSchedulerTicks)

	sc.Step(`^(\w+) starts "([^"]*)" on factory "([^"]*)"$`, ec.playerStartsRecipe)
	sc.Step(`^(\w+) starts an upgrade of factory "([^"]*)"$`, ec.playerStartsUpgrade)
	sc.Step(`^(\w+) pays the tax on factory "([^"]*)"$`, ec.playerPaysTax)
	sc.Step(`^(\w+) pays all taxes$`, ec.playerPaysAllTaxes)
	sc.Step(`^(\w+) sells factory "([^"]*)"$`, ec.playerSellsFactory)
	sc.Step(`^(\w+) pays the salary invoice for factory "([^"]*)"$`, ec.playerPaysSalaryInvoice)
	sc.Step(`^the tax assessment runs$`, ec.theTaxAssessmentRuns)
	sc.Step(`^the overdue check runs$`, ec.theOverdueCheckRuns)
	sc.Step(`^the salary run executes$`, ec.theSalaryRunExecutes)

	sc.Step(`^the request should succeed$`, ec.theRequestShouldSucceed)
	sc.Step(`^the request should fail with code "([^"]*)"$`, ec.theRequestShouldFailWithCode)
	sc.Step(`^factory "([^"]*)" should be (RUNNING|STOPPED|NO_PARTS)$`, ec.factoryShouldBe)
	sc.Step(`^the production on factory "([^"]*)" should take (\d+) seconds$`, ec.productionShouldTake)
	sc.Step(`^the production on factory "([^"]*)" should have (\d+) seconds remaining$`, ec.productionShouldHaveRemaining)
	sc.Step(`^factory "([^"]*)" (input|output) storage should hold (\d+) "([^"]*)"$`, ec.storageShouldHold)
	sc.Step(`^factory "([^"]*)" should be at level (\d+)$`, ec.factoryShouldBeAtLevel)
	sc.Step(`^(\w+) should have a balance of \$([\d.]+)$`, ec.playerShouldHaveBalance)
	sc.Step(`^factory "([^"]*)" should owe \$([\d.]+) in tax$`, ec.factoryShouldOweTax)
	sc.Step(`^factory "([^"]*)" tax should (not )?be overdue$`, ec.factoryTaxOverdue)
	sc.Step(`^(\w+) should have (\d+) unpaid salary invoices? totalling \$([\d.]+)$`, ec.playerShouldHaveUnpaidSalaryInvoices)
}
