package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cohmetrix/resource-pool/defaultpool"
	"github.com/cohmetrix/resource-pool/text"
	"github.com/cohmetrix/resource-pool/tools"
)

const sample = `O menino comeu a maçã que estava sobre a mesa. Depois saiu para brincar no quintal.
A mãe chamou, mas ele não ouviu... Voltou só quando escureceu!`

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	// ---------------- Pool Config ----------------
	const (
		capacity   = 300
		texts      = 2000
		goroutines = 64
		opsPerG    = 2000
	)

	resources := []string{
		defaultpool.Tokens,
		defaultpool.TaggedWords,
		defaultpool.ContentWords,
		defaultpool.TokenTypes,
	}

	fmt.Println("\n================ RESOURCE POOL BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Capacity     :", capacity)
	fmt.Println("Texts        :", texts)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("Resources    :", strings.Join(resources, ", "))
	fmt.Println("---------------------------------")

	lexicon := map[string]string{
		"o": "ART", "a": "ART", "menino": "N", "comeu": "V", "maçã": "N",
		"mesa": "N", "saiu": "V", "mãe": "N", "ele": "PROPESS",
	}
	tagger := tools.NewLexiconTagger(lexicon, tools.MacMorphoTagSet)

	p, err := defaultpool.New(defaultpool.Toolkit{PosTagger: tagger}, capacity)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	corpus := make([]*text.Text, texts)
	for i := range corpus {
		corpus[i] = text.New(fmt.Sprintf("%s\nTexto %d.", sample, i))
	}

	// ---------------- Warmup ----------------
	fmt.Println("Warming up pool...")
	for i := 0; i < capacity/len(resources); i++ {
		for _, r := range resources {
			if _, err := p.Get(ctx, r, corpus[i]); err != nil {
				panic(err)
			}
		}
	}
	fmt.Println("Warmup complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				// mostly hot texts, some cold ones to force eviction
				idx := j % 50
				if j%10 == 0 {
					idx = (id*opsPerG + j) % texts
				}
				_, _ = p.Get(ctx, resources[j%len(resources)], corpus[idx])
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	totalOps := goroutines * opsPerG
	st := p.Stats()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hits / Misses    : %d / %d\n", st.Hits, st.Misses)
	fmt.Printf("Evictions        : %d\n", st.Evictions)
	fmt.Printf("Unpinned         : %d/%d\n", st.Unpinned, st.Capacity)
	fmt.Println("=========================================")

}
