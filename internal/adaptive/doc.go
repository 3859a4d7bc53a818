// Package adaptive turns review history into behavior: tone/depth/caution
// settings for the next prompt, category-bias weights, reward-matrix
// tuning, continuous-learning weight updates, cross-repo weight fusion,
// and reviewer confidence calibration.
//
// All of it is deliberately simple arithmetic over small slices. State
// lives in JSON files in the workspace (ai_adaptive_log.json,
// adaptive_weights.json, reward_matrix.json, learning_weights.json,
// reviewer_confidence.json) and every load path tolerates missing or
// corrupt files by falling back to defaults.
package adaptive
