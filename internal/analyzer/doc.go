// Package analyzer turns privacy-policy text into a score, extracted signals
// and short consumer-facing prose without any external service.
//
// Everything here is keyword driven. The keyword tables live in a
// model.RuleSet so they can be replaced from the configuration file; the
// built-in tables are returned by DefaultRules.
//
// # Scoring conventions
//
// Two scoring functions exist and they point in opposite directions:
//
//   - ScoreText scores raw policy text. It starts at a risk baseline and
//     adds weights for concerning practices, so a higher value is riskier.
//   - ScoreProfile scores a structured PolicyProfile. It starts at a safety
//     baseline and subtracts penalties, so a higher value is safer.
//
// Results carry a model.ScoreScale so callers can tell which one they hold.
//
// # Chat
//
// Answer routes a free-form question to one of a few intents (risk,
// protection, deletion, sharing) and fills a template with the subject's
// name and known signals.
package analyzer
