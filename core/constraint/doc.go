// Package constraint holds the scheduling rules and the validator that
// runs them as one unit.
//
// Rules by priority:
//   - CRITICAL: teacher_conflict, fixed_period
//   - HIGH: teacher_availability, self_reliance_pairing, exchange_mirror,
//     joint_sync, gym_usage
//   - MEDIUM: daily_duplicate, standard_hours
//   - LOW: jiritsu_spread
//
// daily_duplicate and standard_hours honor Relax during fallback placement
// passes; every other rule is always strict.
package constraint
