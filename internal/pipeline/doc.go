// Package pipeline orchestrates policy analyses.
//
// An Orchestrator turns a domain, a block of policy text or a platform name
// into a model.AnalysisResult by running a Pipeline of steps: cache lookup,
// policy discovery, heuristic analysis, optional model prose, and
// persistence. The heuristic step always runs, so a missing or failing
// model backend only changes who wrote the prose.
//
// BatchProcessor analyzes many domains concurrently using errgroup.
package pipeline
