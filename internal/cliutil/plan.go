package cliutil

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	ActionPending   = "pending"
	ActionCancelled = "cancelled"
)

// ActionPlan describes a set of rows that a command will mutate, with a
// confirmation prompt and an Execute callback per row.
type ActionPlan struct {
	Headers       []string
	Rows          [][]string
	ActionColumn  int
	ConfirmPrompt string
	Execute       func(rowIndex int) string
}

// RunActionPlan implements the 3-phase safety pattern:
// empty/dry-run/confirm+execute.
func RunActionPlan(cmd *cobra.Command, runtime CommandRuntime, plan ActionPlan) error {
	if len(plan.Rows) == 0 || runtime.Options.DryRun {
		return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
	}

	ok, err := runtime.Prompter.Confirm(plan.ConfirmPrompt, runtime.Options.NoConfirm)
	if err != nil {
		return err
	}
	if !ok {
		SetActionForAllRows(plan.Rows, plan.ActionColumn, ActionCancelled)
		return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
	}

	if plan.Execute != nil {
		for i := range plan.Rows {
			next := strings.TrimSpace(plan.Execute(i))
			if next == "" {
				continue
			}
			plan.Rows[i][plan.ActionColumn] = next
		}
	}

	return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
}

// SetActionForAllRows sets the action column to the given value for every row.
func SetActionForAllRows(rows [][]string, actionColumn int, action string) {
	for i := range rows {
		rows[i][actionColumn] = action
	}
}

// FailedAction formats a failure string from an error.
func FailedAction(err error) string {
	if err == nil {
		return "failed:unknown"
	}
	return FailedActionMessage(err.Error())
}

// FailedActionMessage formats a failure string from a reason.
func FailedActionMessage(reason string) string {
	clean := strings.TrimSpace(reason)
	if clean == "" {
		clean = "unknown"
	}
	return "failed:" + clean
}
