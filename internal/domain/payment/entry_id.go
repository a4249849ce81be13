package payment

import "github.com/google/uuid"

// entryNamespace scopes deterministic ledger-entry ids so they can
// never collide with ids minted for other record kinds.
var entryNamespace = uuid.MustParse("9f2d7c1e-4b0a-4e6d-8f3c-5a1b2c3d4e5f")

// EntryIDFor derives the ledger-entry id for an installment payment
// reproducibly from the installment id. Two racing pay calls compute
// the same id, so the second insert is rejected by the primary key
// instead of producing a duplicate charge.
func EntryIDFor(installmentID string) string {
	return uuid.NewSHA1(entryNamespace, []byte(installmentID)).String()
}
