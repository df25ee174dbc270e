package services

import "strings"

// staticFallback builds the terminal "no match anywhere" reply. The rules
// are deliberately coarse keyword checks: they pick a triage checklist for
// the broad problem family and suggest nearby curated topics, nothing more.
func staticFallback(message string, related []string) string {
	text := strings.ToLower(message)

	relatedText := ""
	if len(related) > 0 {
		relatedText = "\nRelated topics you can ask: " + strings.Join(related, ", ")
	}

	if strings.Contains(text, "liveness") && strings.Contains(text, "500") {
		return "Try this checklist for liveness probe 500 errors:\n" +
			"1) Confirm the probe path/port matches your app endpoint.\n" +
			"2) Check app logs around probe failures (`kubectl logs <pod> -c <container>`).\n" +
			"3) Increase `initialDelaySeconds` and `timeoutSeconds` if startup is slow.\n" +
			"4) Verify dependencies (DB/cache/API) required by the health endpoint.\n" +
			"5) Use `kubectl describe pod <pod>` to confirm probe failure events." +
			relatedText
	}

	if strings.Contains(text, "readiness") || strings.Contains(text, "liveness") || strings.Contains(text, "probe") {
		return "Probe issue detected. Verify probe path, port, and timing fields " +
			"(`initialDelaySeconds`, `timeoutSeconds`, `periodSeconds`, `failureThreshold`), " +
			"then inspect events with `kubectl describe pod <pod>` and container logs." +
			relatedText
	}

	if strings.Contains(text, "openstack") || strings.Contains(text, "nova") ||
		strings.Contains(text, "neutron") || strings.Contains(text, "cinder") {
		return "OpenStack issue detected. Start with: " +
			"`openstack token issue`, `openstack server list`, `openstack volume list`, " +
			"`openstack network agent list`, then check service logs and project quotas." +
			relatedText
	}

	return "I do not have an exact match yet, but start with: " +
		"`kubectl describe pod <pod>`, `kubectl logs <pod> -c <container> --previous`, " +
		"and check recent events in the namespace. I have logged your question for a curator." +
		relatedText
}
