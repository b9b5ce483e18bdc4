package analytics

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
)

// Sheets holding the finance and inventory day files.
const (
	FinancialSheet = "financial"
	InventorySheet = "inventory"
)

const defaultFinanceDays = 50

const (
	keyCashOnHand     = "finance_cash_on_hand"
	keyInventoryCosts = "finance_inventory_costs_*to_date"
	keyOrderingCosts  = "finance_standard_ordering_costs_*to_date"
	keySalaries       = "finance_salaries_*to_date"
	keyInterest       = "finance_interest_earned_*to_date"
	keySalesStandard  = "finance_sales_standard_*to_date"
	keySalesCustom    = "finance_sales_custom_*to_date"
	keyInventoryLevel = "inventory_level"
	keyDispatches     = "inventory_dispatches"
)

// FinanceDays returns how many days of finance and inventory data to load.
// It reports false when meta lists neither sheet.
func FinanceDays(meta *models.SimulationMeta) (int, bool) {
	financial, hasFinancial := meta.Sheets[FinancialSheet]
	inventory, hasInventory := meta.Sheets[InventorySheet]
	switch {
	case !hasFinancial && !hasInventory:
		return 0, false
	case financial.Days > 0:
		return financial.Days, true
	case inventory.Days > 0:
		return inventory.Days, true
	default:
		return defaultFinanceDays, true
	}
}

// AnalyzeFinance loads days [0, totalDays-1] of both sheets and builds the
// finance section. It returns nil and no error when either sheet has no days.
func AnalyzeFinance(ctx context.Context, loader RecordLoader, totalDays int) (*models.FinancePayload, error) {
	var finance, inventory []models.DayRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		finance, err = loader.LoadScenarioData(gctx, FinancialSheet, 0, totalDays-1)
		return errors.Wrap(err, "failed to load financial data")
	})
	g.Go(func() error {
		var err error
		inventory, err = loader.LoadScenarioData(gctx, InventorySheet, 0, totalDays-1)
		return errors.Wrap(err, "failed to load inventory data")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("loaded finance data", "financial", len(finance), "inventory", len(inventory))
	payload := BuildFinancePayload(finance, inventory)
	if payload == nil {
		logger.Warn("no finance or inventory data found")
	}
	return payload, nil
}

// BuildFinancePayload computes the finance KPIs and charts. Records of the two
// sheets are paired by position; a day missing from one sheet leaves its
// samples absent. It returns nil when either sheet is empty.
func BuildFinancePayload(finance, inventory []models.DayRecord) *models.FinancePayload {
	if len(finance) == 0 || len(inventory) == 0 {
		return nil
	}

	n := max(len(finance), len(inventory))
	labels := make([]int, n)
	dispatches := make([]float64, n)
	cash := make([]null.Float, n)
	level := make([]null.Float, n)
	invCosts := make([]null.Float, n)
	ordering := make([]null.Float, n)
	salaries := make([]null.Float, n)
	interest := make([]null.Float, n)
	salesStandard := make([]null.Float, n)
	salesCustom := make([]null.Float, n)

	for i := range n {
		if i < len(finance) {
			m := finance[i].Metrics
			labels[i] = finance[i].Day
			cash[i] = m.Value(keyCashOnHand)
			invCosts[i] = m.Value(keyInventoryCosts)
			ordering[i] = m.Value(keyOrderingCosts)
			salaries[i] = m.Value(keySalaries)
			interest[i] = null.FloatFrom(m.Value(keyInterest).ValueOrZero())
			salesStandard[i] = m.Value(keySalesStandard)
			salesCustom[i] = m.Value(keySalesCustom)
		} else {
			labels[i] = inventory[i].Day
		}
		if i < len(inventory) {
			level[i] = inventory[i].Metrics.Value(keyInventoryLevel)
			dispatches[i] = inventory[i].Metrics.Value(keyDispatches).ValueOrZero()
		}
	}

	kpis := models.FinanceKPIs{}
	points := make([]models.ReorderPoint, 0)
	for i, d := range dispatches {
		if level[i].Valid && level[i].Float64 <= 0 {
			kpis.StockoutDays++
		}
		if d > 0 {
			kpis.ReorderEvents++
			points = append(points, models.ReorderPoint{Day: labels[i], Inventory: level[i], Cash: cash[i]})
		}
	}

	avgLevel, _ := meanOf(presentValues(level))
	avgCash, _ := meanOf(presentValues(cash))
	kpis.AvgInventoryLevel = roundHalfUp(avgLevel)
	kpis.AvgCashOnHand = roundHalfUp(avgCash)

	totalSales := lastPresent(salesStandard) + lastPresent(salesCustom)
	if totalSales > 0 {
		kpis.InventoryCostPerUnitSold = math.Round(lastPresent(invCosts)/totalSales*100*100) / 100
	}

	chart := func(series ...models.ChartSeries) models.Chart {
		return models.Chart{Labels: labels, Series: series}
	}
	return &models.FinancePayload{
		KPIs: kpis,
		Charts: models.FinanceCharts{
			InventoryCash: chart(
				models.ChartSeries{ID: "inventory_level", Name: "Inventory Level", Values: level},
				models.ChartSeries{ID: "cash_on_hand", Name: "Cash On Hand", Values: cash},
			),
			CostAccumulation: chart(
				models.ChartSeries{ID: "inventory_costs", Name: "Inventory Costs", Values: invCosts},
				models.ChartSeries{ID: "ordering_costs", Name: "Ordering Costs", Values: ordering},
				models.ChartSeries{ID: "salaries", Name: "Salaries", Values: salaries, Highlight: true},
				models.ChartSeries{ID: "interest_earned", Name: "Interest Earned", Values: interest},
			),
			SalesPerformance: chart(
				models.ChartSeries{ID: "sales_standard", Name: "Sales Standard", Values: salesStandard},
				models.ChartSeries{ID: "sales_custom", Name: "Sales Custom", Values: salesCustom},
			),
		},
		ReorderPoints: points,
	}
}

// lastPresent returns the last present sample, or 0 when there is none.
func lastPresent(series []null.Float) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Valid {
			return series[i].Float64
		}
	}
	return 0
}

// roundHalfUp rounds to the nearest integer with halves toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
