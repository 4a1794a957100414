/*
Package errors provides semantic error types for the EntityModel library.

Every failure the mapping layer reports falls into one of a few categories, each
with a sentinel that can be matched with the standard errors.Is() function or the
provided helper functions:

	var (
	    ErrNotFound      = errors.New("entity not found")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrConfiguration = errors.New("invalid configuration")
	    ErrType          = errors.New("type mismatch")
	    ErrState         = errors.New("invalid state")
	    ErrStore         = errors.New("store failure")
	)

Configuration and type errors are raised synchronously, before any store I/O.
Validation errors are recoverable: fix the record and save again. Store errors
come from the client and are never retried by the mapping layer.

Usage:

	if err := widget.SaveOrError(ctx); err != nil {
	    var verr *errors.ValidationError
	    if stderrors.As(err, &verr) {
	        for _, v := range verr.Violations {
	            log.Println(v)
	        }
	    }
	    return err
	}
*/
package errors
