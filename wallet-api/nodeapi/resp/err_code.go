package resp

var (
	// OK result
	OK = NewError(0, "success")

	// ErrParam param errors
	ErrParam    = NewError(10001, "Param parse failed")
	ErrEnvelope = NewError(10002, "Malformed command envelope")
	ErrProposal = NewError(10003, "Invalid proposal id")

	// ErrNotFound lookup errors
	ErrNotFound   = NewError(20001, "Not found")
	ErrNoMultisig = NewError(20002, "Wallet has no governing multisig")

	// ErrQuery internal errors
	ErrQuery = NewError(50001, "Contract query failed")
	ErrJson  = NewError(50002, "Json error")
)
