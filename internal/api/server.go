// Package api is the read-only HTTP surface over a books directory. It never
// mutates the books: all writes go through the CLI.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/app"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/logging"
)

const dateFormat = "2006-01-02"

// NewRouter builds the gin engine for a.
func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), allowOrigins(a.Runtime.API.CORSOrigins), requestLogger(a.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "business": a.Config.Business.Name})
	})

	r.GET("/accounts", listAccountsHandler(a))
	r.GET("/entries", listEntriesHandler(a))
	r.GET("/invoices", listInvoicesHandler(a))
	r.GET("/bills", listBillsHandler(a))
	r.GET("/vendors", listVendorsHandler(a))

	rep := r.Group("/reports")
	rep.GET("/profit-loss", profitLossHandler(a))
	rep.GET("/tax", taxReportHandler(a))
	rep.GET("/trial-balance", trialBalanceHandler(a))
	rep.GET("/reconcile", reconcileHandler(a))

	return r
}

// allowOrigins lets browser UIs read the API. An empty list allows any origin.
func allowOrigins(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	cfg.AddExposeHeaders("Content-Length")
	return cors.New(cfg)
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}

// dateRange reads the optional from/to query parameters.
func dateRange(c *gin.Context) (journal.Range, error) {
	var r journal.Range
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(dateFormat, s)
		if err != nil {
			return r, errors.New("from must be YYYY-MM-DD")
		}
		r.From = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(dateFormat, s)
		if err != nil {
			return r, errors.New("to must be YYYY-MM-DD")
		}
		r.To = t
	}
	return r, nil
}

func serverError(c *gin.Context, a *app.App, funcName string, err error) {
	logging.LogError(a.Logger, "api", funcName, c.Request.URL.String(), nil, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
