package fsm

// FSM states for the broadcast composition flow
//
// State Transitions:
//
// Broadcast Flow:
//   (no session)              -> StateBroadcastEnterText  (via "broadcast" button, admins only)
//   StateBroadcastEnterText   -> StateBroadcastChooseMedia (via text input)
//   StateBroadcastChooseMedia -> StateBroadcastEnterMedia  (via "add photo" / "add video")
//   StateBroadcastChooseMedia -> (no session)              (via "send now", fan-out runs)
//   StateBroadcastEnterMedia  -> StateBroadcastReady       (via matching photo/video upload)
//   StateBroadcastEnterMedia  -> StateBroadcastEnterMedia  (via wrong-kind payload, re-prompt)
//   StateBroadcastReady       -> (no session)              (via "send now", fan-out runs)
//
// Cancel Command:
//   Any state -> (no session) (via /cancel command or "cancel" button)
//
// A user without a session is idle; sessions are created only on flow entry
// and destroyed on completion or cancellation.

const (
	StateBroadcastEnterText   = "broadcast_enter_text"
	StateBroadcastChooseMedia = "broadcast_choose_media"
	StateBroadcastEnterMedia  = "broadcast_enter_media"
	StateBroadcastReady       = "broadcast_ready"
)
