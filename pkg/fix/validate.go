package fix

import (
	"cmp"
	"fmt"
	"slices"
)

// ValidationError reports an edit whose range does not fit the content.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("edit [%d:%d] %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError reports two edits that touch the same bytes.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("edits [%d:%d] and [%d:%d] overlap",
		e.Edit1.StartOffset, e.Edit1.EndOffset,
		e.Edit2.StartOffset, e.Edit2.EndOffset)
}

// ValidateEdits returns the first edit whose range falls outside content of
// length contentLen.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, e := range edits {
		var msg string
		switch {
		case e.StartOffset < 0:
			msg = "has a negative start offset"
		case e.EndOffset < e.StartOffset:
			msg = "ends before start offset"
		case e.EndOffset > contentLen:
			msg = fmt.Sprintf("exceeds content length %d", contentLen)
		default:
			continue
		}
		return &ValidationError{Edit: e, Message: msg}
	}
	return nil
}

// SortEdits orders edits by start offset, then end offset. Equal edits keep
// their relative order.
func SortEdits(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
		)
	})
}

// DetectConflicts checks sorted edits for overlaps. Two insertions at the
// same offset conflict as well since their order is ambiguous.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		overlap := curr.StartOffset < prev.EndOffset
		sameInsert := curr.StartOffset == prev.StartOffset && curr.Len() == 0 && prev.Len() == 0
		if overlap || sameInsert {
			return &ConflictError{Edit1: prev, Edit2: curr}
		}
	}
	return nil
}

// PrepareEdits validates edits and returns a sorted, conflict-free copy.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	SortEdits(sorted)

	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
