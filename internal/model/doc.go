// Package model defines the core data structures shared by policyscan packages.
//
// This package contains the following main types:
//   - PolicyDocument: the outcome of locating and retrieving a privacy policy
//   - AnalysisResult: the score, prose and extracted signals for one subject
//   - RuleSet: the keyword tables that drive heuristic scoring and extraction
//   - PolicyProfile: a structured policy description for a named platform
//
// Models live in their own package so that crawler, analyzer, pipeline,
// database and report can share them without import cycles. All types are
// serializable to JSON for report output and database storage, and rule
// types carry YAML tags so they can be overridden from the config file.
package model
