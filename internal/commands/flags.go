package commands

import (
	"flag"
	"fmt"
	"strconv"

	"scrumboard/internal/service"
)

// optString is a string flag that remembers whether it was given.
type optString struct {
	val string
	set bool
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.val, o.set = s, true
	return nil
}

// optInt is an int flag that remembers whether it was given.
type optInt struct {
	val int
	set bool
}

func (o *optInt) String() string { return strconv.Itoa(o.val) }

func (o *optInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	o.val, o.set = n, true
	return nil
}

// taskFlags are the write-form fields shared by add and update.
type taskFlags struct {
	task        optString
	description optString
	criteria    optString
	status      optString
	category    optInt
	estimate    optInt
	responsible optInt
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.task, "task", "")
	fs.Var(&f.description, "description", "")
	fs.Var(&f.criteria, "criteria", "")
	fs.Var(&f.status, "status", "")
	fs.Var(&f.category, "category", "")
	fs.Var(&f.estimate, "estimate", "")
	fs.Var(&f.responsible, "responsible", "")
}

// apply overwrites the fields of d that were given on the command line.
func (f *taskFlags) apply(d *service.TaskDraft) error {
	if f.task.set {
		d.Task = f.task.val
	}
	if f.description.set {
		d.Description = f.description.val
	}
	if f.criteria.set {
		d.Criteria = f.criteria.val
	}
	if f.status.set {
		if service.StatusLabel(f.status.val) == "" {
			return fmt.Errorf("invalid status: %s (valid: 1 not started, 2 on going, 3 done)", f.status.val)
		}
		d.Status = f.status.val
	}
	if f.category.set {
		d.Category = f.category.val
	}
	if f.estimate.set {
		if f.estimate.val < 0 || f.estimate.val > service.MaxEstimate {
			return fmt.Errorf("estimate out of range: %d (0-%d)", f.estimate.val, service.MaxEstimate)
		}
		d.Estimate = f.estimate.val
	}
	if f.responsible.set {
		d.Responsible = f.responsible.val
	}
	return nil
}
