// Package governance simulates collective decision-making: N stakeholders
// resolve D interrelated policy issues one at a time.
//
// Each round the Process
//
//  1. picks an undecided issue (DecisionSelector: random, sentiment, degree, snowball),
//  2. assembles a voting group with controlled overlap with earlier groups
//     (GroupSelector: random, star),
//  3. turns the group's opinions into an Outcome (DecisionResolver: average, star),
//  4. feeds the outcome back into opinions (OpinionUpdater: average, star),
//
// and records the issue in the History and the group in the Group Hypergraph.
// A run is exactly D rounds.
//
// Inputs are an N×D opinion matrix with entries in [-1,1] and a D×D symmetric
// relationship matrix with entries in {-1,0,1}. Both are copied; the caller's
// matrices are never mutated.
//
// Randomness flows through a single *rand.Rand owned by the Process, so a run
// is reproducible from its seed. A Process is single-threaded; independent
// runs may execute in parallel when each has its own RNG and inputs.
//
// Errors are sentinels matched with errors.Is: ErrShapeMismatch,
// ErrInvalidConfiguration, ErrInsufficientPopulation and ErrProcessDone.
package governance
