// Package events defines the typed call event contract.
//
// Event kinds are grouped by source-facing namespaces:
//
//   - call_progress.*: carrier-level lifecycle signals
//   - line_audio.*: classified audio activity on the line
//   - line_transcript.*: recognized counterparty speech
//   - line_signal.*: structure detected in recognized speech (IVR menus,
//     voicemail greetings) and DTMF results
//   - agent_action.*: acknowledgements for actions the agent requested
//
// Semantics used across the package:
//
//   - Interim: mutable point-in-time transcript snapshot; never used to
//     commit a protocol step.
//   - Final: terminal recognized text for the utterance; the only
//     transcript kind state transitions may trust.
//   - Detected: a classification over already-final text; emitting it does
//     not retract the underlying transcript event.
package events
