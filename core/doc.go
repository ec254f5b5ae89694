// Package core defines the shared data model of MeetingMesh: typed action
// requests extracted from a transcript, the ordered action plan, per-action
// results, the aggregated result set and the final orchestration outcome.
// All entities are created fresh per invocation and are not mutated after
// construction; the coordinator accumulates results into a new ResultSet
// instead of patching entities in place.
package core
