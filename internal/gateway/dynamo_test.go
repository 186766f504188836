package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/pkg/logging"
)

type fakeDynamo struct {
	putInput    *dynamodb.PutItemInput
	updateInput *dynamodb.UpdateItemInput
	deleteInput *dynamodb.DeleteItemInput
	scanInputs  []*dynamodb.ScanInput
	scanPages   []*dynamodb.ScanOutput
	getOutput   *dynamodb.GetItemOutput
	err         error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = in
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInput = in
	return &dynamodb.UpdateItemOutput{}, f.err
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deleteInput = in
	return &dynamodb.DeleteItemOutput{}, f.err
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOutput, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	page := f.scanPages[0]
	f.scanPages = f.scanPages[1:]
	return page, nil
}

func TestDynamoCreateStampsIDAndTable(t *testing.T) {
	fake := &fakeDynamo{}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	id, err := g.Create(context.Background(), CollectionPatients, clinical.Patient{FirstName: "Marie", DoctorID: "d1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected assigned id")
	}
	if got := *fake.putInput.TableName; got != "clinic_patients" {
		t.Errorf("expected table clinic_patients, got %s", got)
	}
	stored, ok := fake.putInput.Item["id"].(*types.AttributeValueMemberS)
	if !ok || stored.Value != id {
		t.Errorf("expected item id %s, got %#v", id, fake.putInput.Item["id"])
	}
}

func TestDynamoUpdateNotFound(t *testing.T) {
	fake := &fakeDynamo{err: &types.ConditionalCheckFailedException{}}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	err := g.Update(context.Background(), CollectionPatients, "missing", map[string]any{"problem": "spasticity"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoUpdateBuildsExpression(t *testing.T) {
	fake := &fakeDynamo{}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	err := g.Update(context.Background(), CollectionPatients, "p1", map[string]any{
		"problem":   "torticollis",
		"diagnosis": "Cervical dystonia",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Fields are applied in sorted order: diagnosis first, then problem.
	if got := *fake.updateInput.UpdateExpression; got != "SET #f0 = :v0, #f1 = :v1" {
		t.Errorf("unexpected update expression %q", got)
	}
	if fake.updateInput.ExpressionAttributeNames["#f0"] != "diagnosis" {
		t.Errorf("expected #f0 = diagnosis, got %s", fake.updateInput.ExpressionAttributeNames["#f0"])
	}
	if *fake.updateInput.ConditionExpression != "attribute_exists(id)" {
		t.Errorf("expected existence condition, got %s", *fake.updateInput.ConditionExpression)
	}
}

func TestDynamoDeleteNotFound(t *testing.T) {
	fake := &fakeDynamo{err: &types.ConditionalCheckFailedException{}}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	if err := g.Delete(context.Background(), CollectionAppointments, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoQueryFiltersByDoctorAndPaginates(t *testing.T) {
	item := map[string]types.AttributeValue{
		"id":       &types.AttributeValueMemberS{Value: "i1"},
		"doctorId": &types.AttributeValueMemberS{Value: "d1"},
	}
	fake := &fakeDynamo{
		scanPages: []*dynamodb.ScanOutput{
			{Items: []map[string]types.AttributeValue{item}, LastEvaluatedKey: item},
			{Items: []map[string]types.AttributeValue{item}},
		},
	}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	var out []clinical.Injection
	if err := g.Query(context.Background(), CollectionInjections, Filter{DoctorID: "d1"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records across pages, got %d", len(out))
	}
	if len(fake.scanInputs) != 2 {
		t.Fatalf("expected 2 scan calls, got %d", len(fake.scanInputs))
	}
	if *fake.scanInputs[0].FilterExpression != "#d = :doctor" {
		t.Errorf("unexpected filter expression %q", *fake.scanInputs[0].FilterExpression)
	}
}

func TestDynamoGetNotFound(t *testing.T) {
	fake := &fakeDynamo{}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	var out clinical.Patient
	if err := g.Get(context.Background(), CollectionPatients, "missing", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoErrorsWrapPersistence(t *testing.T) {
	fake := &fakeDynamo{err: errors.New("throughput exceeded")}
	g := NewDynamoGateway(fake, "clinic_", logging.Default())

	_, err := g.Create(context.Background(), CollectionPatients, clinical.Patient{})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
