package session

// CommitHook is called after every commit that applied at least one edit.
type CommitHook func(CommitResult)

// OnCommit registers a hook run after each non-empty commit.
func (s *Session) OnCommit(fn CommitHook) {
	if fn == nil {
		return
	}
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

func (s *Session) runCommitHooks(res CommitResult) {
	s.hooksMu.RLock()
	hooks := append([]CommitHook(nil), s.onCommit...)
	s.hooksMu.RUnlock()

	for _, fn := range hooks {
		s.callHook(fn, res)
	}
}

func (s *Session) callHook(fn CommitHook, res CommitResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Commit hook panicked")
		}
	}()
	fn(res)
}
