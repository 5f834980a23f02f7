package main

import (
	"fmt"
	"io"

	"github.com/nao1215/hotwalletscan/internal/crawler"
	"github.com/nao1215/hotwalletscan/internal/model"
)

// progressPrinter writes crawl events as terminal lines. New rows are
// printed as soon as their page is processed.
type progressPrinter struct {
	w           io.Writer
	lastPercent int
}

var _ crawler.Observer = (*progressPrinter)(nil)

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, lastPercent: -1}
}

func (p *progressPrinter) ChainQueued(chain model.Chain) {
	fmt.Fprintf(p.w, "[ ] %-14s queued\n", chain)
}

func (p *progressPrinter) RowsFound(chain model.Chain, rows []model.HotWalletRow) {
	for _, r := range rows {
		fmt.Fprintf(p.w, "  + %-12s %s\n", chain, r.Address)
	}
}

func (p *progressPrinter) ChainProgress(chain model.Chain, found, pagesFetched int) {
	fmt.Fprintf(p.w, "    %-12s page %d, %d found\n", chain, pagesFetched, found)
}

// Progress prints only when the integer percentage changes.
func (p *progressPrinter) Progress(pr model.Progress) {
	pct := pr.Percent()
	if pct == p.lastPercent {
		return
	}
	p.lastPercent = pct
	fmt.Fprintf(p.w, "progress %3d%%\n", pct)
}

func (p *progressPrinter) ChainDone(result model.ChainResult) {
	marker := "+"
	if result.IsFailure() {
		marker = "!"
	}
	fmt.Fprintf(p.w, "[%s] %-14s %s\n", marker, result.Chain, result.Status())
}

func (p *progressPrinter) Summary(s crawler.Summary) {
	fmt.Fprintf(p.w, "    %s\n", s)
}
