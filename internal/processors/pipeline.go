package processors

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// Pipeline fans the same record batch out to all three processors
// concurrently and joins the results. A failing processor yields an empty
// result for itself only; the other two are unaffected.
type Pipeline struct {
	health  DataProcessor
	traffic DataProcessor
	energy  DataProcessor
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		health:  NewHealthRiskProcessor(),
		traffic: NewTrafficOptimizationProcessor(),
		energy:  NewEnergyEfficiencyProcessor(),
	}
}

// Stats describes one pipeline run, for reporting only.
type Stats struct {
	TotalProcessors int           `json:"totalProcessors"`
	TotalDataPoints int           `json:"totalDataPoints"`
	ProcessingTime  time.Duration `json:"processingTime"`
}

// Result carries the three parallel interpretations of one batch.
type Result struct {
	Health  []ScoredRecord `json:"healthAnalysis"`
	Traffic []ScoredRecord `json:"trafficOptimization"`
	Energy  []ScoredRecord `json:"energyEfficiency"`
	Stats   Stats          `json:"processingStats"`
}

// Run executes all three processors over the batch. An empty batch is valid
// and produces three empty result sets.
func (p *Pipeline) Run(records []weather.ProcessedRecord) Result {
	start := time.Now()

	var wg sync.WaitGroup
	var health, traffic, energy []ScoredRecord

	run := func(proc DataProcessor, out *[]ScoredRecord) {
		defer wg.Done()
		*out = runSafely(proc, records)
	}

	wg.Add(3)
	go run(p.health, &health)
	go run(p.traffic, &traffic)
	go run(p.energy, &energy)
	wg.Wait()

	return Result{
		Health:  health,
		Traffic: traffic,
		Energy:  energy,
		Stats: Stats{
			TotalProcessors: 3,
			TotalDataPoints: len(records),
			ProcessingTime:  time.Since(start),
		},
	}
}

// runSafely converts a processor panic into a zero result so one failing
// processor cannot poison the other two.
func runSafely(proc DataProcessor, records []weather.ProcessedRecord) (out []ScoredRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("processor %s panicked, returning empty result: %v", proc.Type(), r)
			out = nil
		}
	}()
	return proc.Process(records)
}

// HealthInsights summarizes the health interpretation of a batch.
type HealthInsights struct {
	AverageRiskScore     int      `json:"averageRiskScore"`
	HighRiskLocations    int      `json:"highRiskLocations"`
	MostVulnerableGroups []string `json:"mostVulnerableGroups"`
	Recommendations      []string `json:"recommendations"`
}

// TrafficInsights summarizes the traffic interpretation of a batch.
type TrafficInsights struct {
	AverageTrafficImpact int      `json:"averageTrafficImpact"`
	CongestedAreas       int      `json:"congestedAreas"`
	Recommendations      []string `json:"recommendations"`
}

// EnergyInsights summarizes the energy interpretation of a batch.
type EnergyInsights struct {
	AverageEfficiencyScore            int      `json:"averageEfficiencyScore"`
	NaturalVentilationSuitableRegions int      `json:"naturalVentilationSuitableLocations"`
	Recommendations                   []string `json:"recommendations"`
}

// Summary is the joined cross-processor view of one pipeline run.
type Summary struct {
	Health          HealthInsights  `json:"health"`
	Traffic         TrafficInsights `json:"traffic"`
	Energy          EnergyInsights  `json:"energy"`
	Recommendations []string        `json:"recommendations"`
}

// Summarize condenses a pipeline result into per-domain insights plus the
// top overall recommendations (two per processor).
func Summarize(result Result) Summary {
	health := extractHealthInsights(result.Health)
	traffic := extractTrafficInsights(result.Traffic)
	energy := extractEnergyInsights(result.Energy)

	var overall []string
	overall = append(overall, takeN(health.Recommendations, 2)...)
	overall = append(overall, takeN(traffic.Recommendations, 2)...)
	overall = append(overall, takeN(energy.Recommendations, 2)...)

	return Summary{
		Health:          health,
		Traffic:         traffic,
		Energy:          energy,
		Recommendations: overall,
	}
}

func extractHealthInsights(scored []ScoredRecord) HealthInsights {
	var sum, highRisk int
	var groups, recommendations []string
	for _, s := range scored {
		if s.Health == nil {
			continue
		}
		sum += s.Health.HealthRisk
		if s.Health.RiskCategory == RiskHigh || s.Health.RiskCategory == RiskVeryHigh {
			highRisk++
		}
		groups = append(groups, s.Health.VulnerableGroups...)
		recommendations = append(recommendations, s.Health.Recommendations...)
	}

	return HealthInsights{
		AverageRiskScore:     average(sum, len(scored)),
		HighRiskLocations:    highRisk,
		MostVulnerableGroups: topByCount(groups, 3),
		Recommendations:      takeN(uniqueStrings(recommendations), 3),
	}
}

func extractTrafficInsights(scored []ScoredRecord) TrafficInsights {
	var sum, congested int
	var recommendations []string
	for _, s := range scored {
		if s.Traffic == nil {
			continue
		}
		sum += s.Traffic.TrafficImpact
		if s.Traffic.CongestionLevel == CongestionSevere || s.Traffic.CongestionLevel == CongestionHeavy {
			congested++
		}
		recommendations = append(recommendations, s.Traffic.RouteRecommendations...)
	}

	return TrafficInsights{
		AverageTrafficImpact: average(sum, len(scored)),
		CongestedAreas:       congested,
		Recommendations:      takeN(uniqueStrings(recommendations), 3),
	}
}

func extractEnergyInsights(scored []ScoredRecord) EnergyInsights {
	var sum, natural int
	var recommendations []string
	for _, s := range scored {
		if s.Energy == nil {
			continue
		}
		sum += s.Energy.EnergyEfficiencyScore
		if s.Energy.VentilationStrategy == VentilationNatural {
			natural++
		}
		recommendations = append(recommendations, s.Energy.HVACRecommendations...)
	}

	return EnergyInsights{
		AverageEfficiencyScore:            average(sum, len(scored)),
		NaturalVentilationSuitableRegions: natural,
		Recommendations:                   takeN(uniqueStrings(recommendations), 3),
	}
}

func average(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(float64(sum)/float64(n) + 0.5)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func topByCount(in []string, n int) []string {
	counts := make(map[string]int)
	for _, s := range in {
		counts[s]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return takeN(keys, n)
}

func takeN(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
