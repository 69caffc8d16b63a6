package handlers

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

type counterData struct {
	Simulations int64 `json:"simulations"`
	Reports     int64 `json:"reports"`
}

var (
	counterMu       sync.Mutex
	simulationCount int64
	reportCount     int64
	pendingWrites   int
	counterFilePath = "counter.json"
	flushTicker     *time.Ticker
)

const flushEveryN = 10
const flushInterval = 30 * time.Second

func InitCounter() {
	counterMu.Lock()
	defer counterMu.Unlock()

	data, err := os.ReadFile(counterFilePath)
	if err != nil {
		simulationCount, reportCount = 0, 0
		log.Printf("[counter] counter.json absent, compteurs à zéro")
	} else {
		var cd counterData
		if err := json.Unmarshal(data, &cd); err != nil {
			simulationCount, reportCount = 0, 0
			log.Printf("[counter] counter.json illisible, compteurs à zéro")
		} else {
			simulationCount = cd.Simulations
			reportCount = cd.Reports
			log.Printf("[counter] Compteurs chargés: %d simulations, %d rapports", simulationCount, reportCount)
		}
	}

	flushTicker = time.NewTicker(flushInterval)
	go func() {
		for range flushTicker.C {
			flushCounter()
		}
	}()
}

func IncrementCounter() int64 {
	counterMu.Lock()
	simulationCount++
	val := simulationCount
	pendingWrites++
	shouldFlush := pendingWrites >= flushEveryN
	counterMu.Unlock()

	if shouldFlush {
		flushCounter()
	}
	return val
}

// IncrementReportCounter tracks generated exports (text, CSV, PDF).
func IncrementReportCounter() int64 {
	counterMu.Lock()
	reportCount++
	val := reportCount
	pendingWrites++
	shouldFlush := pendingWrites >= flushEveryN
	counterMu.Unlock()

	if shouldFlush {
		flushCounter()
	}
	return val
}

func GetCounter() int64 {
	counterMu.Lock()
	defer counterMu.Unlock()
	return simulationCount
}

func GetReportCounter() int64 {
	counterMu.Lock()
	defer counterMu.Unlock()
	return reportCount
}

func flushCounter() {
	counterMu.Lock()
	if pendingWrites == 0 {
		counterMu.Unlock()
		return
	}
	cd := counterData{Simulations: simulationCount, Reports: reportCount}
	pendingWrites = 0
	counterMu.Unlock()

	data, err := json.Marshal(cd)
	if err != nil {
		log.Printf("[counter] Erreur de sérialisation: %v", err)
		return
	}
	if err := os.WriteFile(counterFilePath, data, 0644); err != nil {
		log.Printf("[counter] Erreur d'écriture de counter.json: %v", err)
	}
}
