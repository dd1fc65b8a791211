package tui

// MaxOffset exposes the scroll limit for tests.
func (l *LogTerm) MaxOffset() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxOffset()
}
