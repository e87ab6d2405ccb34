package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleared-dev/books/internal/app"
	"github.com/cleared-dev/books/internal/journal"
)

func listAccountsHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		accts, err := a.Journal.ListAccounts(c.Request.Context())
		if err != nil {
			serverError(c, a, "listAccounts", err)
			return
		}
		c.JSON(http.StatusOK, accts)
	}
}

func listEntriesHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := dateRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		entries, err := a.Journal.List(c.Request.Context(), r)
		if err != nil {
			serverError(c, a, "listEntries", err)
			return
		}
		if account := c.Query("account"); account != "" {
			filtered := entries[:0]
			for _, e := range entries {
				if e.Touches(account) {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		c.JSON(http.StatusOK, orEmpty(entries))
	}
}

func listInvoicesHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := a.Receivables.List
		if c.Query("outstanding") == "true" {
			list = a.Receivables.Outstanding
		}
		invoices, err := list(c.Request.Context())
		if err != nil {
			serverError(c, a, "listInvoices", err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(invoices))
	}
}

func listBillsHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		bills, err := a.Payables.Bills(c.Request.Context())
		if err != nil {
			serverError(c, a, "listBills", err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(bills))
	}
}

func listVendorsHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendors, err := a.Payables.Vendors(c.Request.Context())
		if err != nil {
			serverError(c, a, "listVendors", err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(vendors))
	}
}

func profitLossHandler(a *app.App) gin.HandlerFunc {
	return rangeReport(a, "profitLoss", func(c *gin.Context, r journal.Range) (any, error) {
		return a.Reports.ProfitLoss(c.Request.Context(), r)
	})
}

func taxReportHandler(a *app.App) gin.HandlerFunc {
	return rangeReport(a, "taxReport", func(c *gin.Context, r journal.Range) (any, error) {
		return a.Reports.TaxReport(c.Request.Context(), r, a.TaxSettings())
	})
}

func trialBalanceHandler(a *app.App) gin.HandlerFunc {
	return rangeReport(a, "trialBalance", func(c *gin.Context, r journal.Range) (any, error) {
		return a.Reports.TrialBalance(c.Request.Context(), r)
	})
}

func reconcileHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, err := a.Reports.Reconcile(c.Request.Context(), a.Receivables, a.Payables)
		if err != nil {
			serverError(c, a, "reconcile", err)
			return
		}
		c.JSON(http.StatusOK, checks)
	}
}

func rangeReport(a *app.App, name string, build func(*gin.Context, journal.Range) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := dateRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := build(c, r)
		if err != nil {
			serverError(c, a, name, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
