// Package orchestrator runs one tool generation end to end.
//
// A submission is priced, checked against the balance, charged, handed to
// the generator and, on success, folded into the client's memory:
//
//	o := orchestrator.New(orchestrator.Options{Catalog: holder, Generator: gen})
//	res, err := o.Submit(ctx, ledger, memory, orchestrator.Request{
//		Tool:   catalog.ToolLogoGenerator,
//		Fields: map[string]string{"businessName": "Nairobi Coffees"},
//		Visual: true,
//	})
//
// Credits are taken before the generator runs. A failed generation keeps
// them unless RefundOnFailure is set.
package orchestrator
