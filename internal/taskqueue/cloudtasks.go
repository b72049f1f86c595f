package taskqueue

import (
	"context"
	"fmt"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// CloudTasks implements Queue on a single Cloud Tasks queue.
type CloudTasks struct {
	client    *cloudtasks.Client
	queuePath string
	logger    *zap.Logger
}

// NewCloudTasks connects to the named queue.
func NewCloudTasks(ctx context.Context, projectID, location, queue string, logger *zap.Logger) (*CloudTasks, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("taskqueue: connect: %w", err)
	}
	return &CloudTasks{
		client:    client,
		queuePath: fmt.Sprintf("projects/%s/locations/%s/queues/%s", projectID, location, queue),
		logger:    logger,
	}, nil
}

// CreateTask submits one delayed HTTP task. A name collision with an
// earlier task maps to ErrAlreadyExists.
func (q *CloudTasks) CreateTask(ctx context.Context, t Task) error {
	req := &taskspb.CreateTaskRequest{
		Parent: q.queuePath,
		Task: &taskspb.Task{
			Name:         q.queuePath + "/tasks/" + t.ID,
			ScheduleTime: timestamppb.New(t.ScheduleTime),
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_POST,
					Url:        t.URL,
					Headers:    map[string]string{"Content-Type": "application/json"},
					Body:       t.Body,
				},
			},
		},
	}
	if _, err := q.client.CreateTask(ctx, req); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("taskqueue: create %s: %w", t.ID, err)
	}
	q.logger.Debug("task created",
		zap.String("task_id", t.ID),
		zap.Time("schedule_time", t.ScheduleTime))
	return nil
}

// Close releases the underlying gRPC connection.
func (q *CloudTasks) Close() error {
	return q.client.Close()
}
