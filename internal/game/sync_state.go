// internal/game/sync_state.go
package game

// SyncState builds the private snapshot sent to a player when they connect or reconnect:
// their own hand revealed, everyone else's reduced to a count.
func (t *Table) SyncState(forUser string) GameEvent {
	st := t.ViewFor(forUser)
	return GameEvent{Type: EventPrivateSyncState, State: &st}
}
