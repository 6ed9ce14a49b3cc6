package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// awsGetSdkClient loads the default AWS config. When AWS_IAM_ROLE_ARN is set
// the returned config carries credentials for that role.
func awsGetSdkClient(ctx context.Context) (*aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	iamRole := os.Getenv("AWS_IAM_ROLE_ARN")
	if iamRole == "" {
		return &cfg, nil
	}
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(iamRole),
		RoleSessionName: aws.String("stripe-webhooks"),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return nil, err
	}
	creds := output.Credentials
	cfg, err = config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
	if err != nil {
		log.Printf("Error configuration: %s\n", err.Error())
		return nil, err
	}

	return &cfg, nil
}

func AWSGetS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsGetSdkClient(ctx)
	if err != nil {
		log.Printf("Failed to initialize S3: %s\n", err.Error())
		return nil, err
	}
	return s3.NewFromConfig(*cfg), nil
}

func AWSGetSQSClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := awsGetSdkClient(ctx)
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil, err
	}
	return sqs.NewFromConfig(*cfg), nil
}

func AWSGetSecretsManagerClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := awsGetSdkClient(ctx)
	if err != nil {
		log.Printf("Failed to initialize Secrets Manager client: %s\n", err.Error())
		return nil, err
	}
	return secretsmanager.NewFromConfig(*cfg), nil
}

// AWSGetSecretString reads a plain string secret.
func AWSGetSecretString(ctx context.Context, secretID string) (string, error) {
	client, err := AWSGetSecretsManagerClient(ctx)
	if err != nil {
		return "", err
	}
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		log.Printf("Could not read secret %s: %s\n", secretID, err.Error())
		return "", err
	}
	return aws.ToString(out.SecretString), nil
}

// SQSProduceMessage sends body to the named queue.
func SQSProduceMessage(ctx context.Context, queue string, body string) error {
	client, err := AWSGetSQSClient(ctx)
	if err != nil {
		return err
	}
	qurl, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(queue),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", queue, err.Error())
		return err
	}
	_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("[SQS] Error sending message to %s: %s\n", queue, err.Error())
	}
	return err
}

// S3UploadAsset uploads the file at path to bucket under name and returns a
// presigned GET URL valid for expires.
func S3UploadAsset(ctx context.Context, bucket string, name string, path string, expires time.Duration) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("Could not open file to upload: %s\n", err.Error())
		return "", err
	}
	defer file.Close()
	client, err := AWSGetS3Client(ctx)
	if err != nil {
		return "", err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        file,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return "", err
	}
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}, func(po *s3.PresignOptions) {
		po.Expires = expires
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", name, err.Error())
		return "", err
	}
	return r.URL, nil
}
