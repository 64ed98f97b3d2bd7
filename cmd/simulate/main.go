package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"sow-studio-be/pkg/lexical"
	"sow-studio-be/pkg/pricing"
	"sow-studio-be/pkg/stream"
	"sow-studio-be/pkg/thinking"

	"github.com/fatih/color"
)

// Replays a captured assistant transcript ("data: {...}" lines) through
// the full turn pipeline without a server, printing what would land in
// the document. Useful when a stream misbehaves in production: save the
// raw transcript and feed it here.
func main() {
	transcript := flag.String("transcript", "", "path to a captured stream transcript")
	userText := flag.String("message", "", "the user message that triggered the turn (budget/discount detection)")
	gst := flag.Float64("gst", 10, "GST percent")
	flag.Parse()

	if *transcript == "" {
		log.Fatal("usage: simulate -transcript <file> [-message <text>] [-gst <pct>]")
	}

	file, err := os.Open(*transcript)
	if err != nil {
		log.Fatalf("Failed to open transcript: %v", err)
	}
	defer file.Close()

	color.Cyan("🚀 Replaying transcript: %s\n", *transcript)

	text, chunks, aborted, abortMsg := drain(file)
	color.Yellow("\n[STREAM] %d chunk records, %d bytes accumulated", chunks, len(text))
	if aborted {
		color.Red("Stream aborted: %s", abortMsg)
		return
	}
	if strings.TrimSpace(text) == "" {
		color.Red("Stream produced no content")
		return
	}

	cleaned := lexical.RemoveInternalSections(text)
	stripped := thinking.Strip(cleaned)
	if stripped.Commentary != "" {
		color.Yellow("\n[THINKING] %d bytes of commentary removed", len(stripped.Commentary))
	}

	extractor := pricing.NewExtractor(*gst)
	extraction, err := extractor.Extract(stripped.Remainder)

	var scopes []pricing.ScopeBlock
	narrative := extraction.Narrative

	if errors.Is(err, pricing.ErrNoPricingData) {
		color.Red("\n[PRICING] No usable pricing data, narrative only")
	} else if err != nil {
		color.Red("\n[PRICING] Extraction failed: %v", err)
		return
	} else {
		doc := extraction.Document
		card := pricing.DefaultRateCard()
		for i := range doc.Scopes {
			valid, rejected := card.Resolve(doc.Scopes[i].Roles)
			for _, rej := range rejected {
				color.Red("  role rejected: %v", rej)
			}
			if len(valid) == 0 {
				doc.Scopes[i].Roles = nil
				continue
			}
			doc.Scopes[i].Roles = pricing.NormalizeGovernanceRoles(valid, card)
		}
		pricing.RecalculateDocument(doc, *gst)

		budget := pricing.ExtractTurnBudget(*userText)
		budget.Apply(doc, *gst)
		if budget.HasBudget {
			color.Yellow("\n[BUDGET] user budget $%.2f detected", budget.Budget)
		}
		if budget.HasDiscount {
			color.Yellow("[BUDGET] user discount %.1f%% detected", budget.Discount)
		}

		printDocument(doc)
		scopes = doc.Scopes
	}

	for _, raw := range extraction.InvalidBlocks {
		color.Red("\n[PRICING] invalid block left verbatim (%d bytes)", len(raw))
	}

	scrubbed := lexical.ScrubBracketTags(narrative)
	tree := lexical.NewBuilder().Build(scrubbed, scopes)

	title := lexical.DetectTitle(scrubbed)
	if title != "" {
		color.Green("\n[DOCUMENT] title: %s", title)
	}
	color.Green("[DOCUMENT] %d top level nodes", len(tree.Root.Children))

	fmt.Println()
	color.Cyan("=== rendered document ===")
	fmt.Println(lexical.NewRenderer().Render(tree))
}

func drain(r io.Reader) (text string, chunks int, aborted bool, abortMsg string) {
	decoder := stream.NewDecoder(r)
	var sb strings.Builder

	for {
		ev, err := decoder.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("Decode failed: %v", err)
		}

		switch ev.Type {
		case stream.EventChunk, stream.EventUnknown:
			sb.WriteString(ev.Text)
			if ev.Text != "" {
				chunks++
			}
		case stream.EventFinal:
			sb.Reset()
			sb.WriteString(ev.Text)
		case stream.EventAbort:
			return sb.String(), chunks, true, ev.Message
		case stream.EventDone:
			return sb.String(), chunks, false, ""
		}
	}
	return sb.String(), chunks, false, ""
}

func printDocument(doc *pricing.MultiScopeDocument) {
	for _, scope := range doc.Scopes {
		color.Green("\n[SCOPE] %s", scope.Name)
		for _, row := range scope.Roles {
			fmt.Printf("  %-45s %6.1fh x $%6.2f = $%9.2f\n", row.Role, row.Hours, row.Rate, row.Cost)
		}
		fmt.Printf("  subtotal $%.2f", scope.Subtotal)
		if scope.DiscountPercent > 0 {
			fmt.Printf("  -%.1f%% -> $%.2f", scope.DiscountPercent, scope.SubtotalAfterDiscount)
		}
		fmt.Printf("  GST $%.2f  total $%.2f\n", scope.GSTAmount, scope.Total)
	}
	color.Green("\n[TOTAL] $%.2f across %d scope(s)", pricing.DocumentTotal(doc), len(doc.Scopes))
	if doc.BudgetCheck != nil {
		if doc.BudgetCheck.WithinBudget {
			color.Green("[BUDGET] within user budget $%.2f", doc.BudgetCheck.UserBudget)
		} else {
			color.Red("[BUDGET] exceeds user budget $%.2f", doc.BudgetCheck.UserBudget)
		}
	}
}
