package compiler

import (
	"fmt"

	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

func (c *Compiler) semanticValidate(wd *workflowdesc.WorkflowDescription, nodes map[string]*ExecutionNode) []CompileError {
	var errs []CompileError

	if trigger, ok := nodes[wd.Trigger.ID]; ok && len(trigger.Incoming) > 0 {
		errs = append(errs, CompileError{
			Code:    CodeTriggerHasIncomingEdges,
			Message: "the trigger node must not have incoming edges",
			NodeID:  wd.Trigger.ID,
		})
	}

	for _, e := range wd.Edges {
		src, srcOK := nodes[e.Source]
		tgt, tgtOK := nodes[e.Target]
		if !srcOK || !tgtOK {
			continue
		}
		srcEntry, _ := c.catalog.Lookup(src.Type)
		tgtEntry, _ := c.catalog.Lookup(tgt.Type)
		if tgtEntry != nil && len(tgtEntry.AllowedIncomingTypes) > 0 && !contains(tgtEntry.AllowedIncomingTypes, src.Type) {
			errs = append(errs, CompileError{
				Code:    CodeInvalidNodeConnection,
				Message: fmt.Sprintf("node %q does not accept an incoming connection from type %q", tgt.ID, src.Type),
				NodeID:  tgt.ID,
			})
		}
		if srcEntry != nil && len(srcEntry.AllowedOutgoingTypes) > 0 && !contains(srcEntry.AllowedOutgoingTypes, tgt.Type) {
			errs = append(errs, CompileError{
				Code:    CodeInvalidNodeConnection,
				Message: fmt.Sprintf("node %q does not allow an outgoing connection to type %q", src.ID, tgt.Type),
				NodeID:  src.ID,
			})
		}
	}

	if wd.Trigger.Type == "ussd_session_start" {
		hasEnd := false
		for _, n := range nodes {
			if n.EndsSession {
				hasEnd = true
				break
			}
		}
		if !hasEnd {
			errs = append(errs, CompileError{
				Code:    CodeUSSDMissingSessionEnd,
				Message: "a ussd_session_start workflow must include a session_end node",
			})
		}
	}

	return errs
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
