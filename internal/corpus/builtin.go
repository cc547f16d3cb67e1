package corpus

import "ragchat/internal/domain"

// Default returns the built-in enterprise knowledge base.
func Default() *Static {
	return New([]domain.Document{
		{
			ID:    "sec-policy",
			Title: "Security Policy Handbook",
			Pages: []domain.Page{
				{Label: "1", Content: "Purpose: This handbook defines the security posture for enterprise systems. Core principles include least privilege, zero trust, and defense-in-depth. All employees must complete security training within 30 days of hire."},
				{Label: "2", Content: "Access Control: MFA is required for all privileged accounts. Passwords must be at least 14 characters and rotated every 90 days. Service accounts are reviewed quarterly."},
				{Label: "3", Content: "Data Handling: Confidential data must be encrypted in transit and at rest. Approved storage includes the Secure Vault and encrypted S3 buckets. Data exfiltration is prohibited without security approval."},
			},
		},
		{
			ID:    "onboarding",
			Title: "Employee Onboarding Guide",
			Pages: []domain.Page{
				{Label: "1", Content: "Welcome! Day 1 includes account provisioning, badge pickup, and device imaging. New hires must acknowledge the Code of Conduct and Security Policy Handbook."},
				{Label: "2", Content: "Tools Setup: Engineers receive access to Jira, Confluence, GitHub, and Slack. Access requests should be submitted through the IT Service Portal with manager approval."},
				{Label: "3", Content: "Training: Required training includes privacy, security awareness, and secure coding. Completion is tracked in the Learning Management System."},
			},
		},
		{
			ID:    "incident-response",
			Title: "Incident Response Runbook",
			Pages: []domain.Page{
				{Label: "1.1", Content: "Severity Levels: SEV1 indicates customer impact or data risk. SEV2 indicates degraded service. SEV3 indicates minor issues. Escalation must occur within 15 minutes for SEV1."},
				{Label: "2.3", Content: "Containment Steps: Isolate affected systems, revoke compromised credentials, and preserve forensic evidence. Use the incident bridge for coordination."},
				{Label: "3.2", Content: "Post-Incident Review: Conduct a blameless retrospective within 5 business days. Document root cause, contributing factors, and follow-up actions."},
			},
		},
		{
			ID:    "adr",
			Title: "Architecture Decision Records",
			Pages: []domain.Page{
				{Label: "ADR-014", Content: "Decision: Adopt service mesh for inter-service encryption and observability. Context: growing microservice count required standardized telemetry."},
				{Label: "ADR-021", Content: "Decision: Use event-driven architecture for billing updates. Consequences: improved resiliency, added complexity for schema evolution."},
				{Label: "ADR-033", Content: "Decision: Standardize on Postgres for transactional workloads. Alternatives considered included MySQL and DynamoDB."},
			},
		},
		{
			ID:    "benefits-pto",
			Title: "Benefits & PTO Policy",
			Pages: []domain.Page{
				{Label: "1", Content: "PTO Accrual: Full-time employees accrue 20 days of PTO annually. PTO must be submitted in the HR system at least 5 days in advance when possible."},
				{Label: "2", Content: "Holidays: The company observes 12 paid holidays. Floating holidays can be used for regional or cultural events with manager approval."},
				{Label: "3", Content: "Leave of Absence: Extended leave requests must be coordinated with HR and your manager. Medical leave may require documentation."},
			},
		},
	})
}
