package scheduler

import "github.com/telcoflow/workflowengine/pkg/workflowdesc"

// JobFromWorkflow extracts the scheduled-trigger job for a workflow
// description, or ok=false if its trigger isn't a scheduled trigger.
func JobFromWorkflow(wd *workflowdesc.WorkflowDescription) (Job, bool) {
	if wd == nil || wd.Trigger.Type != string(workflowdesc.TriggerScheduled) {
		return Job{}, false
	}
	cronExpr, _ := wd.Trigger.Config["cron_expression"].(string)
	timezone, _ := wd.Trigger.Config["timezone"].(string)
	return Job{
		WorkflowID:      wd.Metadata.ID,
		WorkflowVersion: wd.Metadata.Version,
		NodeID:          wd.Trigger.ID,
		CronExpr:        cronExpr,
		Timezone:        timezone,
	}, true
}
