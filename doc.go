// Package antminer induces classification and regression rule lists with
// ant colony optimization.
//
// A training run is a sequential covering loop: each iteration runs one
// colony over the instances not yet covered, keeps the best rule the ants
// found, and removes the instances that rule covers. Ants walk a
// construction graph whose vertices are the predictor attributes; every
// step is a roulette over pheromone × heuristic, and each chosen attribute
// becomes a condition.
//
// Packages, bottom-up:
//
//	dataset/     instances, attribute metadata, per-run coverage flags, CSV input
//	rng/         concurrency-safe seeded random source, roulette selection
//	graph/       construction graph with context-indexed pheromone entries
//	archive/     ACO_R / ACO_MV solution archives (continuous, categorical)
//	rule/        conditions, rules, assignators, decision lists
//	quality/     rule and list quality functions
//	discretize/  entropy / variance thresholds for continuous attributes
//	heuristic/   per-vertex heuristic information
//	construct/   the ant: one rule per call; variable archives
//	prune/       rule and list pruners
//	pheromone/   MAX-MIN, level and archive update policies
//	colony/      iteration scheduler on a bounded worker pool
//	covering/    the training entry point
//	config/      options, validation, YAML / env / flag loading
//
// The antminer command in cmd/antminer trains from CSV files:
//
//	antminer train --data weather.csv --target play --min-cases 2
//
// Quick ASCII view of the construction graph for the weather data:
//
//	         ┌──────────► outlook ─────────┐
//	START ───┼──► temperature ◄──► humidity ┼──► END
//	         └──────────► windy ───────────┘
//
// Every attribute vertex links to every other one and to END; the pheromone
// of an edge depends on how many conditions the rule already has.
package antminer
