package actions

import (
	"context"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
	"github.com/telcoflow/workflowengine/pkg/template"
)

func initiateCallHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return actionError(in, &dispatcher.NodeError{
				Code:    "voice_session_required",
				Message: "initiate_call requires an attached session",
				Type:    dispatcher.ErrorPermanent,
			})
		}

		scope := dispatcher.BuildScope(in)
		to, _ := in.Node.Config["to"].(string)

		res, err := client.InitiateCall(ctx, telecom.CallRequest{
			SessionID: in.Context.Session.SessionID,
			To:        template.Render(to, scope),
		})
		if err != nil {
			return actionError(in, classify(err, "call_initiation_error"))
		}
		if !res.Answered {
			return actionResult(in, "no_answer", map[string]any{"call_session_id": res.CallSessionID})
		}
		return actionSuccess(in, map[string]any{"call_session_id": res.CallSessionID})
	}
}

func playIVRHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return actionError(in, &dispatcher.NodeError{
				Code:    "voice_session_required",
				Message: "play_ivr requires an attached session",
				Type:    dispatcher.ErrorPermanent,
			})
		}

		scope := dispatcher.BuildScope(in)
		text, _ := in.Node.Config["text"].(string)
		audioURL, _ := in.Node.Config["audio_url"].(string)

		err := client.PlayIVR(ctx, telecom.IVRPlayRequest{
			SessionID: in.Context.Session.SessionID,
			Text:      template.Render(text, scope),
			AudioURL:  template.Render(audioURL, scope),
		})
		if err != nil {
			return actionError(in, classify(err, "ivr_play_error"))
		}
		return actionSuccess(in, nil)
	}
}

func collectDTMFHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return actionError(in, &dispatcher.NodeError{
				Code:    "voice_session_required",
				Message: "collect_dtmf requires an attached session",
				Type:    dispatcher.ErrorPermanent,
			})
		}

		scope := dispatcher.BuildScope(in)
		prompt, _ := in.Node.Config["prompt"].(string)

		res, err := client.CollectDTMF(ctx, telecom.DTMFCollectRequest{
			SessionID: in.Context.Session.SessionID,
			Prompt:    template.Render(prompt, scope),
			MaxDigits: asInt(in.Node.Config["max_digits"], 0),
			TimeoutMs: asInt(in.Node.Config["timeout_ms"], 0),
		})
		if err != nil {
			return actionError(in, classify(err, "dtmf_collection_error"))
		}
		if res.TimedOut {
			return actionResult(in, "timeout", map[string]any{"digits": res.Digits})
		}
		return actionSuccess(in, map[string]any{"digits": res.Digits})
	}
}
