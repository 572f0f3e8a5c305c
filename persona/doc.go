// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package persona loads and validates senator personas.

A persona file is JSON or YAML. It holds either a mapping from record id
to record, in which case document order is the speaking order, or a plain
list of records. Every record needs name, party, state, experience, traits
and policies; bio and backend are optional. Names must be unique ignoring
case because directed questions look senators up by name.

Loading is all-or-nothing: the first malformed record fails the whole file
with an INVALID_PERSONA error naming the record and field, and an unknown
backend fails with UNSUPPORTED_BACKEND.
*/
package persona
