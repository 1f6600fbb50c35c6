package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commandExamples = map[string]string{
	"awsutils": strings.TrimSpace(`
awsutils s3 list-buckets --output json
awsutils dynamodb scan-table --table-name orders --max-pages 50
awsutils ec2 start-instances --instance-ids i-0123456789abcdef0 --dry-run`),
	"awsutils completion": strings.TrimSpace(`
awsutils completion zsh > "${fpath[1]}/_awsutils"
awsutils completion bash > /etc/bash_completion.d/awsutils`),
	"awsutils version": strings.TrimSpace(`
awsutils version
awsutils --version`),
	"awsutils s3 create-bucket": strings.TrimSpace(`
awsutils s3 create-bucket --bucket-name my-bucket --region eu-west-1 --dry-run
awsutils s3 create-bucket --generate-name reports --no-confirm`),
	"awsutils s3 upload-file": strings.TrimSpace(`
awsutils s3 upload-file --file ./report.pdf --bucket-name my-bucket
awsutils s3 upload-file --file ./report.pdf --bucket-name my-bucket --key reports/2026/report.pdf`),
	"awsutils s3 list-objects": strings.TrimSpace(`
awsutils s3 list-objects --bucket-name my-bucket --prefix logs/
awsutils s3 list-objects --bucket-name my-bucket --max-pages 10 --allow-partial`),
	"awsutils ec2 start-instances": strings.TrimSpace(`
awsutils ec2 start-instances --instance-ids i-0123456789abcdef0 --dry-run
awsutils ec2 start-instances --instance-ids i-0123456789abcdef0,i-0fedcba9876543210 --no-confirm`),
	"awsutils ec2 list-instances": strings.TrimSpace(`
awsutils ec2 list-instances --state running
awsutils ec2 list-instances --filter-tag Environment=prod --output json`),
	"awsutils lambda list-functions": strings.TrimSpace(`
awsutils lambda list-functions
awsutils lambda list-functions --region us-west-2 --output yaml`),
	"awsutils dynamodb scan-table": strings.TrimSpace(`
awsutils dynamodb scan-table --table-name orders
awsutils dynamodb scan-table --table-name orders --page-size 100 --timeout 2m --output json`),
	"awsutils cloudwatch list-log-groups": strings.TrimSpace(`
awsutils cloudwatch list-log-groups --prefix /aws/lambda
awsutils cloudwatch list-log-groups --output json`),
	"awsutils cloudformation list-stacks": strings.TrimSpace(`
awsutils cloudformation list-stacks --status CREATE_COMPLETE
awsutils cloudformation list-stacks --output json`),
	"awsutils iam list-users": strings.TrimSpace(`
awsutils iam list-users --path-prefix /engineering/
awsutils iam list-users --output json`),
	"awsutils iam list-access-keys": strings.TrimSpace(`
awsutils iam list-access-keys --username alice`),
	"awsutils kms list-keys": strings.TrimSpace(`
awsutils kms list-keys
awsutils kms list-keys --customer-managed --filter-tag team=data`),
	"awsutils ecs list-task-definitions": strings.TrimSpace(`
awsutils ecs list-task-definitions --status INACTIVE
awsutils ecs list-task-definitions --family-prefix api --output json`),
	"awsutils efs list-file-systems": strings.TrimSpace(`
awsutils efs list-file-systems --filter-tag env=prod`),
	"awsutils efs list-mount-targets": strings.TrimSpace(`
awsutils efs list-mount-targets --file-system-id fs-0123456789abcdef0`),
	"awsutils r53 list-hosted-zones": strings.TrimSpace(`
awsutils r53 list-hosted-zones --private`),
	"awsutils org list-accounts": strings.TrimSpace(`
awsutils org list-accounts --output json
awsutils org list-accounts --ou-name Workloads,Sandbox`),
	"awsutils ssm list-parameters": strings.TrimSpace(`
awsutils ssm list-parameters --prefix /app/prod`),
}

func applyCommandHelpDefaults(root *cobra.Command) {
	walkCommands(root, func(cmd *cobra.Command) {
		if strings.TrimSpace(cmd.Long) == "" && strings.TrimSpace(cmd.Short) != "" {
			cmd.Long = cmd.Short
		}

		if strings.TrimSpace(cmd.Example) == "" {
			cmd.Example = defaultCommandExample(cmd)
		}
	})
}

func defaultCommandExample(cmd *cobra.Command) string {
	if example, ok := commandExamples[cmd.CommandPath()]; ok {
		return example
	}

	if cmd.HasAvailableSubCommands() {
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() || sub.Hidden {
				continue
			}
			return strings.TrimSpace(fmt.Sprintf(`
%s --help
%s --help`, cmd.CommandPath(), sub.CommandPath()))
		}
	}

	return strings.TrimSpace(fmt.Sprintf(`
%s --output table
%s --output json`, cmd.CommandPath(), cmd.CommandPath()))
}

func walkCommands(root *cobra.Command, visit func(*cobra.Command)) {
	visit(root)
	for _, child := range root.Commands() {
		walkCommands(child, visit)
	}
}
