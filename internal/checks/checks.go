// Package checks implements the document-level forensic analyzers. Each
// check is a pure function of a Document: no shared state, no side effects,
// so the full battery can run concurrently.
package checks

import (
	"fmt"
	"sync"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

// Check is a single forensic analyzer.
type Check interface {
	Name() string
	Run(doc *models.Document) models.CheckResult
}

// RunAll executes every check concurrently and collects results by name.
// A panicking check is absorbed into an error-flagged, inapplicable result;
// it never takes sibling checks down with it.
func RunAll(doc *models.Document, active []Check) map[string]models.CheckResult {
	results := make(map[string]models.CheckResult, len(active))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range active {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()

			result := safeRun(c, doc)

			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return results
}

func safeRun(c Check, doc *models.Document) (result models.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.FailedCheck(fmt.Errorf("%s check failed: %v", c.Name(), r))
		}
	}()
	return c.Run(doc)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
