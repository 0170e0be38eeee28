// Package services holds the error taxonomy shared by the external
// collaborator wrappers and the batch orchestrator. The wrappers themselves
// live in subpackages, one per external tool.
package services
