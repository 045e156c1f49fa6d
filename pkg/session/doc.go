// Package session holds the per-user state of the market and the
// transitions that change it.
//
// A Session owns the user, their credit ledger, client memory, chat history,
// purchase flow and last generation. Every transition takes the session's
// lock, so one user's actions are serialized while different users run in
// parallel. The Manager creates sessions at login, keeps them in an
// expirable LRU and drops them at logout or after the idle TTL.
//
//	mgr := session.NewManager(deps, session.Config{TTL: 30 * time.Minute})
//	s, err := mgr.Login(ctx, auth.Credentials{Name: "Jane", Phone: "0712345678", Code: "1234"})
//	res, err := s.Submit(ctx, orchestrator.Request{Tool: catalog.ToolSloganGenerator})
package session
