package domain

import "fmt"

// The status machines are expressed as explicit {from, to} tables with an
// optional guard. A transition absent from the table is rejected; a present
// transition still runs its guard against the record.

type depositEdge struct {
	From DepositStatus
	To   DepositStatus
}

var depositTransitions = map[depositEdge]func(*Deposit) error{
	{DepositStatusPending, DepositStatusCompleted}: func(d *Deposit) error {
		if d.TransactionID == "" {
			return ErrMissingTransaction
		}
		return nil
	},
	{DepositStatusPending, DepositStatusCancelled}: nil,

	// Dispute sub-states hang off a settled deposit. Mediation may resolve
	// back to completed or escalate; chargeback and dispute are terminal.
	{DepositStatusCompleted, DepositStatusMediation}:  nil,
	{DepositStatusCompleted, DepositStatusChargeback}: nil,
	{DepositStatusCompleted, DepositStatusDispute}:    nil,
	{DepositStatusMediation, DepositStatusChargeback}: nil,
	{DepositStatusMediation, DepositStatusDispute}:    nil,
	{DepositStatusMediation, DepositStatusCompleted}:  nil,
}

// CanTransition reports whether the deposit may move to the target status.
func (d *Deposit) CanTransition(to DepositStatus) error {
	if d.Status == to {
		return ErrAlreadyProcessed
	}
	guard, ok := depositTransitions[depositEdge{d.Status, to}]
	if !ok {
		if d.Status == DepositStatusCompleted || d.Status == DepositStatusCancelled ||
			d.Status == DepositStatusChargeback || d.Status == DepositStatusDispute {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}
	if guard != nil {
		return guard(d)
	}
	return nil
}

// Transition validates and applies the target status.
func (d *Deposit) Transition(to DepositStatus) error {
	if err := d.CanTransition(to); err != nil {
		return err
	}
	d.Status = to
	return nil
}

// CanTransition reports whether the withdrawal may move to the target status.
// Any movement away from a non-pending withdrawal is a re-processing attempt.
func (w *Withdrawal) CanTransition(to WithdrawalStatus) error {
	if w.Status != WithdrawalStatusPending {
		return ErrAlreadyProcessed
	}
	switch to {
	case WithdrawalStatusCompleted, WithdrawalStatusCancelled:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, to)
}

// Transition validates and applies the target status.
func (w *Withdrawal) Transition(to WithdrawalStatus) error {
	if err := w.CanTransition(to); err != nil {
		return err
	}
	w.Status = to
	return nil
}
