/*
Package engine implements the build orchestrator: the container that owns
hooks, facets, attachments and children, and the two-phase protocol that
turns registered hooks into an initialized component graph.

A build runs in two phases:

 1. Verify (pure): resolve the configuration, extract and order hooks,
    execute their factories against a candidate facet table, enforce
    contracts, build the facet dependency graph, and topologically sort it
    (consulting the shared graph cache). The product is a BuildPlan; no
    container state is touched. Plans are memoized against the configuration
    hash, so a rebuild with an unchanged configuration and hook set reuses
    the previous plan outright.

 2. Execute (transactional): partition the plan's facets into new,
    same-instance and overwrite sets, remove superseded facets, then
    register, initialize and attach the batch as one atomic unit.
    Initialization runs level by level: all facets of a dependency level
    start together and the level completes only when every member has
    settled. Any failure disposes the whole batch in reverse topological
    order, restores what was removed, and re-throws the original error.
    After a failed build the container is exactly as it was before.

Verify-phase failures (structural, dependency, cycle, contract, duplicate
kind) therefore never leave side effects, and execute-phase failures roll
back completely.
*/
package engine
