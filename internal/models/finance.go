package models

import "github.com/guregu/null/v5"

// FinanceKPIs are the headline figures of the finance and inventory section.
type FinanceKPIs struct {
	StockoutDays      int     `json:"stockout_days"`
	ReorderEvents     int     `json:"reorder_events"`
	AvgInventoryLevel float64 `json:"avg_inventory_level"`
	AvgCashOnHand     float64 `json:"avg_cash_on_hand"`
	// InventoryCostPerUnitSold is the final inventory cost as a percentage of
	// final total sales, rounded to two decimals.
	InventoryCostPerUnitSold float64 `json:"inventory_cost_per_unit_sold"`
}

// ReorderPoint marks a day on which raw material was dispatched.
type ReorderPoint struct {
	Day       int        `json:"day"`
	Inventory null.Float `json:"inventory"`
	Cash      null.Float `json:"cash"`
}

// FinanceCharts groups the charts of the finance section.
type FinanceCharts struct {
	InventoryCash    Chart `json:"inventory_cash"`
	CostAccumulation Chart `json:"cost_accumulation"`
	SalesPerformance Chart `json:"sales_performance"`
}

// FinancePayload is the chart-ready finance and inventory section.
type FinancePayload struct {
	KPIs          FinanceKPIs    `json:"kpis"`
	Charts        FinanceCharts  `json:"charts"`
	ReorderPoints []ReorderPoint `json:"reorder_points"`
}
