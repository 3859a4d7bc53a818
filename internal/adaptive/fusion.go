package adaptive

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultNetworkWeightsPath is the hub snapshot of fused weights.
const DefaultNetworkWeightsPath = "adaptive_network_weights.json"

// Fuse merges a local and a global weight set. Keys present on both
// sides average; keys present on one side pass through.
func Fuse(local, global Weights) Weights {
	fused := make(Weights, len(local)+len(global))
	for k, lv := range local {
		if gv, ok := global[k]; ok {
			fused[k] = round4((lv + gv) / 2)
		} else {
			fused[k] = lv
		}
	}
	for k, gv := range global {
		if _, ok := fused[k]; !ok {
			fused[k] = gv
		}
	}
	return fused
}

// MergeWeightSets averages any number of weight sets per key. With no
// input sets it returns the neutral learning vector so downstream
// consumers always see a full set.
func MergeWeightSets(sets []Weights) Weights {
	if len(sets) == 0 {
		return DefaultLearningWeights()
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range sets {
		for k, v := range s {
			sums[k] += v
			counts[k]++
		}
	}
	merged := make(Weights, len(sums))
	for k, sum := range sums {
		merged[k] = round4(sum / float64(counts[k]))
	}
	return merged
}

// networkSnapshot is the on-disk shape of the hub snapshot.
type networkSnapshot struct {
	Source  string  `json:"source"`
	Weights Weights `json:"weights"`
}

// RunFusion fuses the local weight file with the network snapshot in
// dir, writing the fused set back to both. When neither file exists it
// seeds both with defaults.
func RunFusion(dir string) (Weights, error) {
	localPath := filepath.Join(dir, DefaultWeightsPath)
	globalPath := filepath.Join(dir, DefaultNetworkWeightsPath)

	local := loadOptionalWeights(localPath)
	global := loadOptionalWeights(globalPath)

	if len(local) == 0 && len(global) == 0 {
		def := Weights{"depth_multiplier": 1.0, "security_bias": 1.0}
		if err := SaveWeights(localPath, def); err != nil {
			return nil, err
		}
		if err := SaveWeights(globalPath, def); err != nil {
			return nil, err
		}
		return def, nil
	}

	fused := Fuse(local, global)
	if err := SaveWeights(localPath, fused); err != nil {
		return nil, err
	}
	snap, err := json.MarshalIndent(networkSnapshot{Source: "fused", Weights: fused}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling network snapshot: %w", err)
	}
	if err := os.WriteFile(globalPath, snap, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", globalPath, err)
	}
	return fused, nil
}

// loadOptionalWeights is LoadWeights without the default fallback:
// a missing or empty file yields nil.
func loadOptionalWeights(path string) Weights {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return decodeWeights(data)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
